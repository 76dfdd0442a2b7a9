package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/service"
	"go.uber.org/zap"
)

type itemPayload struct {
	Food     string   `json:"food"`
	Quantity *float64 `json:"quantity"`
}

type unitPayload struct {
	Unit string `json:"unit"`
}

type datePayload struct {
	Date string `json:"date"`
}

// GetState returns the current session ledger and totals.
func (a *API) GetState(c *gin.Context) {
	state, err := a.currentSession(c)
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": serializeSession(state)})
}

// AddItem 把食物加入当前餐次；数量缺省时使用会话的默认数量
func (a *API) AddItem(c *gin.Context) {
	var payload itemPayload
	if isJSONRequest(c) {
		if !bindJSON(c, &payload, "invalid item payload") {
			return
		}
	} else {
		payload.Food = c.PostForm("food")
		if raw := strings.TrimSpace(c.PostForm("quantity")); raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				a.handleIntakeError(c, fmt.Errorf("%w: amount must be a number", service.ErrInvalidEntry))
				return
			}
			payload.Quantity = &value
		}
	}

	catalog := catalogFrom(c)
	var entry service.LogEntry
	state, err := a.updateSession(c, func(state *service.SessionState) error {
		quantity := state.DefaultQuantity
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}
		var addErr error
		entry, addErr = state.AddItem(catalog, payload.Food, quantity)
		return addErr
	})
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}

	a.log.Info("item added",
		zap.String("session", state.ID),
		zap.String("meal", string(entry.Meal)),
		zap.String("food", entry.Food),
		zap.Float64("quantity", entry.Quantity),
		zap.String("unit", string(entry.Unit)),
	)
	a.succeed(c, gin.H{"entry": entry, "state": serializeSession(state)}, addedMessage(entry))
}

// FinishMeal closes the current meal and moves on to the next one.
func (a *API) FinishMeal(c *gin.Context) {
	a.advanceMeal(c, "finish")
}

// SkipMeal moves past the current meal without logging anything.
func (a *API) SkipMeal(c *gin.Context) {
	a.advanceMeal(c, "skip")
}

func (a *API) advanceMeal(c *gin.Context, action string) {
	var previous string
	state, err := a.updateSession(c, func(state *service.SessionState) error {
		previous = state.Ledger.CurrentLabel()
		state.Ledger.AdvanceMeal()
		return nil
	})
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}

	a.log.Info("meal advanced",
		zap.String("session", state.ID),
		zap.String("action", action),
		zap.String("from", previous),
		zap.String("to", state.Ledger.CurrentLabel()),
	)
	a.succeed(c, gin.H{"state": serializeSession(state)}, "")
}

// SetUnit 切换录入单位（克 / 份）
func (a *API) SetUnit(c *gin.Context) {
	var payload unitPayload
	if isJSONRequest(c) {
		if !bindJSON(c, &payload, "invalid unit payload") {
			return
		}
	} else {
		payload.Unit = c.PostForm("unit")
	}

	unit, err := service.ParseUnit(payload.Unit)
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}

	state, err := a.updateSession(c, func(state *service.SessionState) error {
		state.SetUnit(unit)
		return nil
	})
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}
	a.succeed(c, gin.H{"state": serializeSession(state)}, "")
}

// SetDate 设置日期标签
func (a *API) SetDate(c *gin.Context) {
	var payload datePayload
	if isJSONRequest(c) {
		if !bindJSON(c, &payload, "invalid date payload") {
			return
		}
	} else {
		payload.Date = c.PostForm("date")
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(payload.Date), time.Local)
	if err != nil {
		a.handleIntakeError(c, fmt.Errorf("%w: date must look like 2006-01-02", service.ErrInvalidEntry))
		return
	}

	state, err := a.updateSession(c, func(state *service.SessionState) error {
		state.SetDate(date)
		return nil
	})
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}
	a.succeed(c, gin.H{"state": serializeSession(state)}, "")
}

// RefreshAll 清空会话并重新加载目录
func (a *API) RefreshAll(c *gin.Context) {
	state, err := a.updateSession(c, func(state *service.SessionState) error {
		state.Reset(a.now())
		return nil
	})
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}
	a.log.Info("session reset", zap.String("session", state.ID))

	if _, err := a.catalogs.Reload(); err != nil {
		a.handleIntakeError(c, err)
		return
	}
	a.succeed(c, gin.H{"state": serializeSession(state), "catalog": a.catalogs.Status()}, "")
}

func addedMessage(entry service.LogEntry) string {
	return fmt.Sprintf("Added: %s (%.1f %s) → %.1f kcal, P %.1f g, C %.1f g, F %.1f g",
		entry.Food, entry.Quantity, entry.Unit, entry.Kcal, entry.Protein, entry.Carbs, entry.Fat)
}

type mealSummary struct {
	Meal    service.MealSlot   `json:"meal"`
	Entries []service.LogEntry `json:"entries"`
	Totals  service.Macros     `json:"totals"`
}

func summarizeMeals(ledger *service.Ledger) []mealSummary {
	summaries := make([]mealSummary, 0, len(service.MealSlots()))
	for _, meal := range service.MealSlots() {
		entries := ledger.Entries(meal)
		if entries == nil {
			entries = []service.LogEntry{}
		}
		summaries = append(summaries, mealSummary{
			Meal:    meal,
			Entries: entries,
			Totals:  ledger.MealTotals(meal),
		})
	}
	return summaries
}

func serializeSession(state *service.SessionState) gin.H {
	ledger := state.Ledger
	return gin.H{
		"date":               state.DateLabel(),
		"unit":               state.Unit,
		"default_quantity":   state.DefaultQuantity,
		"current_meal":       ledger.CurrentLabel(),
		"current_meal_index": ledger.CurrentIndex(),
		"finished":           ledger.Finished(),
		"meals":              summarizeMeals(ledger),
		"totals":             ledger.GrandTotals(),
	}
}
