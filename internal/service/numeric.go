package service

import (
	"math"
	"strconv"
	"strings"
)

// parseNumericOrDefault 将表格单元格转换为数字，无法解析（空值、文本、NaN、Inf）时返回 fallback。
// 数据格式错误只会降级为默认值，不会中断目录加载。
func parseNumericOrDefault(cell string, fallback float64) float64 {
	value, ok := parseNumeric(cell)
	if !ok {
		return fallback
	}
	return value
}

func parseNumeric(cell string) (float64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
