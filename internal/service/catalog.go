package service

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrCatalogSchema 在表格缺少必需列时返回
	ErrCatalogSchema = errors.New("catalog missing required columns")
	// ErrCatalogEmpty 在表格没有任何食物行时返回
	ErrCatalogEmpty = errors.New("catalog has no foods")
	// ErrCatalogUnreadable 在文件无法读取或不是合法的分隔文本时返回
	ErrCatalogUnreadable = errors.New("could not read catalog")
	// ErrUnknownFood 在目录中找不到指定食物时返回
	ErrUnknownFood = errors.New("unknown food")
)

// DefaultPortionSize 是缺少份量列时每份的克数/毫升数
const DefaultPortionSize = 150.0

// FoodRecord 是目录中的一行。Per100 为每 100 g/ml 的含量，
// PerPortion 为每份 (PortionSize g/ml) 的含量，来源于表格或由 Per100 推导。
type FoodRecord struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	PortionSize float64 `json:"portion_size"`
	Per100      Macros  `json:"per_100"`
	PerPortion  Macros  `json:"per_portion"`
}

type column int

const (
	colFood column = iota
	colCategory
	colPortionSize
	colKcal100
	colProtein100
	colCarbs100
	colFat100
	colKcalPortion
	colProteinPortion
	colCarbsPortion
	colFatPortion
	columnCount
)

// 第一个名称为标准列名，其余为兼容的英文别名
var columnNames = [columnCount][]string{
	colFood:           {"voedingsmiddel", "food"},
	colCategory:       {"categorie", "category"},
	colPortionSize:    {"portie_g_ml", "portion_g_ml"},
	colKcal100:        {"kcal_per_100"},
	colProtein100:     {"eiwit_g_per_100", "protein_g_per_100"},
	colCarbs100:       {"khd_g_per_100", "carbs_g_per_100"},
	colFat100:         {"vet_g_per_100", "fat_g_per_100"},
	colKcalPortion:    {"kcal_per_portie", "kcal_per_portion"},
	colProteinPortion: {"eiwit_g_per_portie", "protein_g_per_portion"},
	colCarbsPortion:   {"khd_g_per_portie", "carbs_g_per_portion"},
	colFatPortion:     {"vet_g_per_portie", "fat_g_per_portion"},
}

var requiredColumns = []column{colFood, colCategory, colKcal100, colProtein100, colCarbs100, colFat100}

// nutrientColumns 按 kcal, protein, carbs, fat 顺序对应 per100 与 per-portion 列
var nutrientColumns = [4]struct{ per100, perPortion column }{
	{colKcal100, colKcalPortion},
	{colProtein100, colProteinPortion},
	{colCarbs100, colCarbsPortion},
	{colFat100, colFatPortion},
}

// catalogSchema 记录每个逻辑列在表头中的位置，缺失为 -1
type catalogSchema [columnCount]int

func resolveSchema(header []string) (catalogSchema, error) {
	var schema catalogSchema
	for i := range schema {
		schema[i] = -1
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	for col, aliases := range columnNames {
		for _, alias := range aliases {
			if idx, ok := positions[alias]; ok {
				schema[col] = idx
				break
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if schema[col] < 0 {
			missing = append(missing, columnNames[col][0])
		}
	}
	if len(missing) > 0 {
		return schema, fmt.Errorf("%w: %s", ErrCatalogSchema, strings.Join(missing, ", "))
	}
	return schema, nil
}

func (s catalogSchema) has(col column) bool {
	return s[col] >= 0
}

func (s catalogSchema) cell(row []string, col column) string {
	idx := s[col]
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Catalog 是加载后不可变的食物目录，按 (category, name) 排序用于展示，
// 同时提供按名称的 O(1) 查找；重名时排序靠后的行覆盖靠前的行。
type Catalog struct {
	foods  []FoodRecord
	index  map[string]int
	source string
	digest string
}

// BuildCatalog 校验表头并把原始表格转换为目录
func BuildCatalog(table Table) (*Catalog, error) {
	schema, err := resolveSchema(table.Header)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if strings.TrimSpace(schema.cell(row, colFood)) == "" {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrCatalogEmpty
	}

	foods := make([]FoodRecord, len(rows))
	per100 := make([][4]float64, len(rows))
	for i, row := range rows {
		portionSize := DefaultPortionSize
		if schema.has(colPortionSize) {
			portionSize = parseNumericOrDefault(schema.cell(row, colPortionSize), 0)
		}
		for n, cols := range nutrientColumns {
			per100[i][n] = parseNumericOrDefault(schema.cell(row, cols.per100), 0)
		}
		foods[i] = FoodRecord{
			Name:        strings.TrimSpace(schema.cell(row, colFood)),
			Category:    strings.TrimSpace(schema.cell(row, colCategory)),
			PortionSize: portionSize,
			Per100:      macrosFromValues(per100[i]),
		}
	}

	perPortion := make([][4]float64, len(rows))
	for n, cols := range nutrientColumns {
		sourced := make([]float64, len(rows))
		parsed := make([]bool, len(rows))
		useColumn := false
		if schema.has(cols.perPortion) {
			for i, row := range rows {
				sourced[i], parsed[i] = parseNumeric(schema.cell(row, cols.perPortion))
				if parsed[i] && sourced[i] != 0 {
					useColumn = true
				}
			}
		}

		for i := range rows {
			if useColumn && parsed[i] {
				perPortion[i][n] = sourced[i]
				continue
			}
			perPortion[i][n] = derivePortion(per100[i][n], foods[i].PortionSize)
		}
	}
	for i := range foods {
		foods[i].PerPortion = macrosFromValues(perPortion[i])
	}

	slices.SortStableFunc(foods, func(a, b FoodRecord) int {
		if diff := cmp.Compare(a.Category, b.Category); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Name, b.Name)
	})

	index := make(map[string]int, len(foods))
	for i, food := range foods {
		index[food.Name] = i
	}

	return &Catalog{foods: foods, index: index}, nil
}

func derivePortion(per100, portionSize float64) float64 {
	return per100 * (portionSize / 100.0)
}

// ParseCatalog 读取并构建目录，同时记录来源名称与内容摘要
func ParseCatalog(source string, r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}

	table, err := ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	catalog, err := BuildCatalog(table)
	if err != nil {
		return nil, err
	}

	sum := blake2b.Sum256(data)
	catalog.source = strings.TrimSpace(source)
	catalog.digest = hex.EncodeToString(sum[:])
	return catalog, nil
}

// Lookup 按名称查找食物
func (c *Catalog) Lookup(name string) (FoodRecord, bool) {
	if c == nil {
		return FoodRecord{}, false
	}
	idx, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return FoodRecord{}, false
	}
	return c.foods[idx], true
}

// AllNames 按展示顺序返回全部食物名称（含重名）
func (c *Catalog) AllNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.foods))
	for i, food := range c.foods {
		names[i] = food.Name
	}
	return names
}

// Foods 返回展示顺序下的全部记录副本
func (c *Catalog) Foods() []FoodRecord {
	if c == nil {
		return nil
	}
	return slices.Clone(c.foods)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.foods)
}

// Source 返回加载来源（文件路径或上传的文件名）
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Digest 返回原始文件内容的 BLAKE2b-256 摘要
func (c *Catalog) Digest() string {
	if c == nil {
		return ""
	}
	return c.digest
}

// Macros 查找食物并计算宏量营养素
func (c *Catalog) Macros(name string, quantity float64, unit Unit) (Macros, error) {
	food, ok := c.Lookup(name)
	if !ok {
		return Macros{}, fmt.Errorf("%w: %s", ErrUnknownFood, strings.TrimSpace(name))
	}
	return ComputeMacros(food, quantity, unit), nil
}
