package view

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// 72 DPI 时 1pt 对应 1 像素
const (
	chartWidth  = 500
	chartHeight = 320
	chartDPI    = 72
	chartBar    = 66
	chartFace   = "Go"
)

// ChartLabels 与 ChartPalette 按 kcal, protein, carbs, fat 顺序排列
var (
	ChartLabels  = [4]string{"kcal", "protein (g)", "carbs (g)", "fat (g)"}
	ChartPalette = [4]color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	}
)

var (
	fontsOnce sync.Once
	fontsErr  error
)

// registerFonts 把 Go 字体注册到 plot 的字体缓存
func registerFonts() error {
	fontsOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		font.DefaultCache.Add(font.Collection{
			{Font: font.Font{Typeface: chartFace}, Face: regular},
			{Font: font.Font{Typeface: chartFace, Weight: xfont.WeightBold}, Face: bold},
		})
	})
	return fontsErr
}

func chartFont(size vg.Length, weight xfont.Weight) font.Font {
	return font.Font{Typeface: chartFace, Weight: weight, Size: size}
}

// RenderTotalsChart 绘制四项总量的柱状图并以 PNG 写出，柱顶标注一位小数的数值
func RenderTotalsChart(w io.Writer, title string, values [4]float64) error {
	if err := registerFonts(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font = chartFont(vg.Points(14), xfont.WeightBold)
	p.X.Tick.Label.Font = chartFont(vg.Points(11), xfont.WeightNormal)
	p.Y.Tick.Label.Font = chartFont(vg.Points(10), xfont.WeightNormal)

	maxValue := 0.0
	for _, value := range values {
		maxValue = math.Max(maxValue, value)
	}
	if maxValue <= 0 {
		maxValue = 1
	}
	// 顶部留出数值标签的空间
	p.Y.Min = 0
	p.Y.Max = maxValue * 1.15
	p.X.Min = -0.5
	p.X.Max = float64(len(values)) - 0.5

	points := make(plotter.XYs, len(values))
	labels := make([]string, len(values))
	for i, value := range values {
		bars, err := plotter.NewBarChart(plotter.Values{value}, vg.Points(chartBar))
		if err != nil {
			return fmt.Errorf("build %s bar: %w", ChartLabels[i], err)
		}
		bars.XMin = float64(i)
		bars.Color = ChartPalette[i]
		bars.LineStyle.Width = 0
		p.Add(bars)

		points[i] = plotter.XY{X: float64(i), Y: value}
		labels[i] = fmt.Sprintf("%.1f", value)
	}
	p.NominalX(ChartLabels[:]...)

	valueLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return fmt.Errorf("build value labels: %w", err)
	}
	valueLabels.Offset = vg.Point{Y: vg.Points(3)}
	for i := range valueLabels.TextStyle {
		valueLabels.TextStyle[i].Font = chartFont(vg.Points(11), xfont.WeightNormal)
		valueLabels.TextStyle[i].XAlign = text.XCenter
		valueLabels.TextStyle[i].YAlign = text.YBottom
	}
	p.Add(valueLabels)

	canvas := vgimg.NewWith(vgimg.UseWH(vg.Points(chartWidth), vg.Points(chartHeight)), vgimg.UseDPI(chartDPI))
	p.Draw(draw.New(canvas))

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}
