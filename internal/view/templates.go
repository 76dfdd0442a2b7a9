package view

import (
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap 是页面模板使用的辅助函数
var FuncMap = template.FuncMap{
	"fmt1": func(value float64) string {
		return strconv.FormatFloat(value, 'f', 1, 64)
	},
	"eq": func(a, b interface{}) bool {
		return a == b
	},
}

// Templates 解析内嵌的页面模板
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(FuncMap).ParseFS(templateFS, "templates/*.html"))
}
