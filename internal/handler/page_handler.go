package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

const (
	pageTitle   = "Daily Intake Tracker"
	pageCaption = "Log grams or portions, compute macros, view totals and export a day log."
)

const helpMarkdown = `**How to use**

1. Load your nutrition CSV (upload or path).
2. Pick **grams** or **portion** (1 portion = the table's portion size).
3. Add foods to the current meal, then **Finish meal** or **Skip meal**.
4. Meals run in order: Breakfast → Lunch → Snack → Dinner.
5. Download the day log as CSV once anything is logged.`

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// ShowTracker renders the tracker page for the current session.
func (a *API) ShowTracker(c *gin.Context) {
	status := a.catalogs.Status()
	data := gin.H{
		"title":         pageTitle,
		"caption":       pageCaption,
		"help":          a.help,
		"catalogSource": status.Source,
	}

	state, err := a.currentSession(c)
	if err != nil {
		a.log.Error("load session failed", zap.Error(err))
		data["catalogError"] = "session unavailable, please reload the page"
		c.HTML(http.StatusInternalServerError, "tracker.html", data)
		return
	}

	successes, failures := a.takeFlashes(c)
	data["successes"] = successes
	data["errors"] = failures

	// 目录不可用时页面只保留错误信息与加载表单
	catalog, err := a.catalogs.Current()
	if err != nil {
		data["catalogError"] = err.Error()
		c.HTML(http.StatusOK, "tracker.html", data)
		return
	}

	units := []string{string(service.UnitGrams), string(service.UnitPortion)}
	ledger := state.Ledger

	data["date"] = state.DateLabel()
	data["units"] = units
	data["unit"] = string(state.Unit)
	data["defaultQuantity"] = state.DefaultQuantity
	data["currentMeal"] = ledger.CurrentLabel()
	data["finished"] = ledger.Finished()
	data["foods"] = catalog.AllNames()
	data["entries"] = ledger.AllEntries()
	data["summaries"] = summarizeMeals(ledger)
	data["total"] = ledger.GrandTotals()
	data["hasEntries"] = ledger.Len() > 0

	c.HTML(http.StatusOK, "tracker.html", data)
}
