package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

type sampleFood struct {
	name     string
	category string
	portion  float64
	kcal     float64
	protein  float64
	carbs    float64
	fat      float64
}

// 示例食物，每 100 g/ml 的数值
var sampleFoods = []sampleFood{
	{"Apple", "Fruit", 150, 52, 0.3, 14, 0.2},
	{"Banana", "Fruit", 120, 89, 1.1, 23, 0.3},
	{"Blueberries", "Fruit", 125, 57, 0.7, 14, 0.3},
	{"Oatmeal", "Grains", 40, 379, 13.2, 67.7, 6.5},
	{"Whole wheat bread", "Grains", 35, 247, 13, 41, 3.4},
	{"Brown rice (cooked)", "Grains", 180, 123, 2.7, 25.6, 1},
	{"Chicken breast", "Meat & fish", 120, 165, 31, 0, 3.6},
	{"Salmon", "Meat & fish", 125, 208, 20, 0, 13},
	{"Egg", "Dairy & eggs", 55, 143, 12.6, 0.7, 9.5},
	{"Greek yoghurt", "Dairy & eggs", 150, 97, 9, 3.9, 5},
	{"Semi-skimmed milk", "Dairy & eggs", 250, 46, 3.4, 4.8, 1.5},
	{"Broccoli", "Vegetables", 150, 34, 2.8, 7, 0.4},
	{"Carrot", "Vegetables", 100, 41, 0.9, 10, 0.2},
	{"Peanut butter", "Spreads", 15, 588, 25, 20, 50},
	{"Whey protein", "Supplements", 30, 400, 80, 8, 6},
}

var header = []string{
	"voedingsmiddel", "categorie", "portie_g_ml",
	"kcal_per_100", "eiwit_g_per_100", "khd_g_per_100", "vet_g_per_100",
	"kcal_per_portie", "eiwit_g_per_portie", "khd_g_per_portie", "vet_g_per_portie",
}

// 示例营养表生成器
func main() {
	out := flag.String("out", "TOTAAL_Voedingstabel_UPDATED_with_WHEY.csv", "output CSV path")
	withPortions := flag.Bool("portions", true, "write per-portion columns")
	flag.Parse()

	file, err := os.Create(*out)
	if err != nil {
		log.Fatal("创建文件失败:", err)
	}
	defer file.Close()

	if err := writeSampleCatalog(file, *withPortions); err != nil {
		log.Fatal("写入营养表失败:", err)
	}

	fmt.Printf("✅ 示例营养表已生成: %s (%d 种食物)\n", *out, len(sampleFoods))
}

func writeSampleCatalog(w io.Writer, withPortions bool) error {
	writer := csv.NewWriter(w)

	columns := header
	if !withPortions {
		columns = header[:7]
	}
	if err := writer.Write(columns); err != nil {
		return err
	}

	for _, food := range sampleFoods {
		record := []string{
			food.name,
			food.category,
			formatValue(food.portion),
			formatValue(food.kcal),
			formatValue(food.protein),
			formatValue(food.carbs),
			formatValue(food.fat),
		}
		if withPortions {
			factor := food.portion / 100
			record = append(record,
				formatValue(food.kcal*factor),
				formatValue(food.protein*factor),
				formatValue(food.carbs*factor),
				formatValue(food.fat*factor),
			)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
