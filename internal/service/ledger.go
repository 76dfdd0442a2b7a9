package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidEntry 在数量非正数、未选择食物或单位/餐次非法时返回
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrMealsFinished 在所有餐次已结束后继续添加时返回
	ErrMealsFinished = errors.New("all meals are finished")
	// ErrInvalidLedger 在从存储恢复的数据不一致时返回
	ErrInvalidLedger = errors.New("invalid ledger state")
)

// MealSlot 是固定顺序的餐次
type MealSlot string

const (
	MealBreakfast MealSlot = "Breakfast"
	MealLunch     MealSlot = "Lunch"
	MealSnack     MealSlot = "Snack"
	MealDinner    MealSlot = "Dinner"
)

// FinishedLabel 是游标越过最后一餐后的终止状态名称
const FinishedLabel = "Finished"

var meals = [...]MealSlot{MealBreakfast, MealLunch, MealSnack, MealDinner}

const mealCount = len(meals)

// MealSlots returns the meal slots in the order the cursor visits them.
func MealSlots() []MealSlot {
	return meals[:]
}

// ParseMealSlot 解析餐次名称（忽略大小写）
func ParseMealSlot(raw string) (MealSlot, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, meal := range meals {
		if strings.EqualFold(string(meal), trimmed) {
			return meal, true
		}
	}
	return "", false
}

func mealIndex(meal MealSlot) int {
	for i, candidate := range meals {
		if candidate == meal {
			return i
		}
	}
	return -1
}

// LogEntry 是一条录入记录。数量与宏量营养素在录入时保留一位小数并冻结，
// 之后目录重载或单位切换都不会回溯修改。
type LogEntry struct {
	Meal     MealSlot `json:"meal"`
	Food     string   `json:"food"`
	Quantity float64  `json:"quantity"`
	Unit     Unit     `json:"unit"`
	Macros
}

// Ledger 按餐次保存录入记录，并维护只增不减的当前餐次游标。
// 游标取值 [0, len(meals)]，len(meals) 表示 Finished。
type Ledger struct {
	entries [mealCount][]LogEntry
	current int
}

// NewLedger 创建空账本，游标位于第一餐
func NewLedger() *Ledger {
	return &Ledger{}
}

// RestoreLedger 根据存储的游标与记录重建账本，记录顺序即插入顺序
func RestoreLedger(current int, entries []LogEntry) (*Ledger, error) {
	if current < 0 || current > mealCount {
		return nil, fmt.Errorf("%w: meal cursor %d out of range", ErrInvalidLedger, current)
	}

	ledger := &Ledger{current: current}
	for _, entry := range entries {
		idx := mealIndex(entry.Meal)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown meal %q", ErrInvalidLedger, entry.Meal)
		}
		ledger.entries[idx] = append(ledger.entries[idx], entry)
	}
	return ledger, nil
}

// AddEntry 计算宏量营养素并把新记录追加到指定餐次，失败时账本不变
func (l *Ledger) AddEntry(catalog *Catalog, meal MealSlot, food string, quantity float64, unit Unit) (LogEntry, error) {
	idx := mealIndex(meal)
	if idx < 0 {
		return LogEntry{}, fmt.Errorf("%w: unknown meal %q", ErrInvalidEntry, meal)
	}

	entry, err := newLogEntry(catalog, meal, food, quantity, unit)
	if err != nil {
		return LogEntry{}, err
	}
	// 合计同样必须是有限值
	if !finiteMacros(sumMacros(l.GrandTotals(), entry.Macros)) {
		return LogEntry{}, fmt.Errorf("%w: amount too large", ErrInvalidEntry)
	}

	l.entries[idx] = append(l.entries[idx], entry)
	return entry, nil
}

func newLogEntry(catalog *Catalog, meal MealSlot, food string, quantity float64, unit Unit) (LogEntry, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return LogEntry{}, fmt.Errorf("%w: pick a food first", ErrInvalidEntry)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return LogEntry{}, fmt.Errorf("%w: amount must be > 0", ErrInvalidEntry)
	}
	if unit != UnitGrams && unit != UnitPortion {
		return LogEntry{}, fmt.Errorf("%w: unsupported unit %q", ErrInvalidEntry, unit)
	}
	if catalog == nil {
		return LogEntry{}, ErrCatalogUnavailable
	}

	macros, err := catalog.Macros(food, quantity, unit)
	if err != nil {
		return LogEntry{}, err
	}
	if !finiteMacros(macros) {
		return LogEntry{}, fmt.Errorf("%w: amount too large", ErrInvalidEntry)
	}

	return LogEntry{
		Meal:     meal,
		Food:     food,
		Quantity: round1(quantity),
		Unit:     unit,
		Macros:   macros,
	}, nil
}

func finiteMacros(m Macros) bool {
	for _, value := range m.Values() {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}

// AdvanceMeal 把游标前移一位，到达 Finished 后保持不变。
// “完成本餐”与“跳过本餐”都调用它，账本不区分两者。
func (l *Ledger) AdvanceMeal() int {
	if l.current < mealCount {
		l.current++
	}
	return l.current
}

func (l *Ledger) CurrentIndex() int {
	return l.current
}

// CurrentMeal 返回当前餐次；已结束时 ok 为 false
func (l *Ledger) CurrentMeal() (MealSlot, bool) {
	if l.current >= mealCount {
		return "", false
	}
	return meals[l.current], true
}

// CurrentLabel 返回当前餐次名称或 Finished
func (l *Ledger) CurrentLabel() string {
	if meal, ok := l.CurrentMeal(); ok {
		return string(meal)
	}
	return FinishedLabel
}

func (l *Ledger) Finished() bool {
	return l.current >= mealCount
}

// Entries 返回某餐次记录的副本
func (l *Ledger) Entries(meal MealSlot) []LogEntry {
	idx := mealIndex(meal)
	if idx < 0 {
		return nil
	}
	return append([]LogEntry(nil), l.entries[idx]...)
}

// AllEntries 先按餐次顺序、再按插入顺序返回全部记录
func (l *Ledger) AllEntries() []LogEntry {
	all := make([]LogEntry, 0, l.Len())
	for _, entries := range l.entries {
		all = append(all, entries...)
	}
	return all
}

func (l *Ledger) Len() int {
	total := 0
	for _, entries := range l.entries {
		total += len(entries)
	}
	return total
}

// MealTotals 汇总单个餐次。累加的是每条记录已取整的值，求和后再保留一位小数，
// 因此与“把数量合并后一次性计算”的结果可能相差每条最多 0.05。
func (l *Ledger) MealTotals(meal MealSlot) Macros {
	idx := mealIndex(meal)
	if idx < 0 {
		return Macros{}
	}

	items := make([]Macros, 0, len(l.entries[idx]))
	for _, entry := range l.entries[idx] {
		items = append(items, entry.Macros)
	}
	return sumMacros(items...)
}

// GrandTotals 汇总全部餐次的 MealTotals
func (l *Ledger) GrandTotals() Macros {
	totals := make([]Macros, 0, mealCount)
	for _, meal := range meals {
		totals = append(totals, l.MealTotals(meal))
	}
	return sumMacros(totals...)
}

// Reset 清空全部记录并把游标移回第一餐
func (l *Ledger) Reset() {
	*l = Ledger{}
}
