package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table 是分隔文本解析后的原始表格：首行为列名，其余为数据行
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable 读取分隔文本表格。分隔符根据首行在 ; \t , 中自动判断，
// 行长度不一致时缺失的单元格视为空。
func ReadTable(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, fmt.Errorf("%w: file is empty", ErrCatalogUnreadable)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("%w: file is empty", ErrCatalogUnreadable)
	}

	table := Table{Header: records[0], Rows: make([][]string, 0, len(records)-1)}
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, candidate := range []rune{';', '\t'} {
		if count := bytes.Count(line, []byte(string(candidate))); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if len(bytes.TrimSpace([]byte(cell))) > 0 {
			return false
		}
	}
	return true
}
