package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit 描述录入数量的单位
type Unit string

const (
	UnitGrams   Unit = "grams"
	UnitPortion Unit = "portion"
)

// 单位切换时表单的默认数量
const (
	defaultGramsQuantity   = 100.0
	defaultPortionQuantity = 1.0
)

// ParseUnit 解析单位字符串，支持常见写法
func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "grams", "gram", "g", "ml":
		return UnitGrams, nil
	case "portion", "portions", "portie":
		return UnitPortion, nil
	default:
		return "", fmt.Errorf("%w: unsupported unit %q", ErrInvalidEntry, raw)
	}
}

// DefaultQuantity 返回该单位下新增条目的默认数量
func (u Unit) DefaultQuantity() float64 {
	if u == UnitPortion {
		return defaultPortionQuantity
	}
	return defaultGramsQuantity
}

// Macros 汇总四项宏量营养素：能量(kcal)、蛋白质、碳水、脂肪(g)
type Macros struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Values returns the four nutrients in kcal, protein, carbs, fat order.
func (m Macros) Values() [4]float64 {
	return [4]float64{m.Kcal, m.Protein, m.Carbs, m.Fat}
}

func macrosFromValues(values [4]float64) Macros {
	return Macros{Kcal: values[0], Protein: values[1], Carbs: values[2], Fat: values[3]}
}

// IsZero 判断四项是否全部为 0
func (m Macros) IsZero() bool {
	return m.Kcal == 0 && m.Protein == 0 && m.Carbs == 0 && m.Fat == 0
}

func (m Macros) scale(factor float64) Macros {
	return Macros{
		Kcal:    m.Kcal * factor,
		Protein: m.Protein * factor,
		Carbs:   m.Carbs * factor,
		Fat:     m.Fat * factor,
	}
}

func (m Macros) rounded() Macros {
	return Macros{
		Kcal:    round1(m.Kcal),
		Protein: round1(m.Protein),
		Carbs:   round1(m.Carbs),
		Fat:     round1(m.Fat),
	}
}

// ComputeMacros 计算某食物在给定数量与单位下的宏量营养素。
// grams: per100 * quantity / 100；portion: perPortion * quantity，
// 若 perPortion 四项全为 0，则临时按 per100 * portionSize / 100 重新推导。
// 结果逐项保留一位小数（四舍五入，远离零方向）。
func ComputeMacros(food FoodRecord, quantity float64, unit Unit) Macros {
	if unit == UnitGrams {
		return food.Per100.scale(quantity / 100.0).rounded()
	}

	perPortion := food.PerPortion
	if perPortion.IsZero() {
		perPortion = food.Per100.scale(food.PortionSize / 100.0)
	}
	return perPortion.scale(quantity).rounded()
}

// round1 保留一位小数，0.x5 一律远离零舍入
func round1(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	rounded, _ := decimal.NewFromFloat(value).Round(1).Float64()
	return rounded
}

// sumMacros 以十进制精度累加已取整的数值，最后再统一保留一位小数。
// 调用方保证数值有限，账本在录入时已拒绝非有限值。
func sumMacros(items ...Macros) Macros {
	var totals [4]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}

	for _, item := range items {
		for i, value := range item.Values() {
			totals[i] = totals[i].Add(decimal.NewFromFloat(value))
		}
	}

	var values [4]float64
	for i, total := range totals {
		values[i], _ = total.Round(1).Float64()
	}
	return macrosFromValues(values)
}
