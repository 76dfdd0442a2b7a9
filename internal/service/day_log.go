package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrDayLogEmpty 在没有任何记录可导出时返回
	ErrDayLogEmpty = errors.New("no entries to export")
	// ErrDayLogMalformed 在解析导出文件失败时返回
	ErrDayLogMalformed = errors.New("malformed day log")
)

var dayLogHeader = []string{"Meal", "Food", "Qty", "Unit", "kcal", "protein (g)", "carbs (g)", "fat (g)"}

// WriteDayLog 把账本导出为 CSV，先按餐次顺序再按插入顺序，每条记录一行
func WriteDayLog(w io.Writer, ledger *Ledger) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dayLogHeader); err != nil {
		return fmt.Errorf("write day log header: %w", err)
	}

	for _, entry := range ledger.AllEntries() {
		record := []string{
			string(entry.Meal),
			entry.Food,
			formatOneDecimal(entry.Quantity),
			string(entry.Unit),
			formatOneDecimal(entry.Kcal),
			formatOneDecimal(entry.Protein),
			formatOneDecimal(entry.Carbs),
			formatOneDecimal(entry.Fat),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write day log row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush day log: %w", err)
	}
	return nil
}

// ParseDayLog 解析 WriteDayLog 的输出
func ParseDayLog(r io.Reader) ([]LogEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(dayLogHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDayLogMalformed, err)
	}
	for i, name := range dayLogHeader {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("%w: unexpected column %q", ErrDayLogMalformed, header[i])
		}
	}

	var entries []LogEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDayLogMalformed, err)
		}

		entry, err := parseDayLogRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDayLogMalformed, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseDayLogRecord(record []string) (LogEntry, error) {
	meal, ok := ParseMealSlot(record[0])
	if !ok {
		return LogEntry{}, fmt.Errorf("unknown meal %q", record[0])
	}
	unit, err := ParseUnit(record[3])
	if err != nil {
		return LogEntry{}, err
	}

	var numbers [5]float64
	for i, raw := range []string{record[2], record[4], record[5], record[6], record[7]} {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return LogEntry{}, fmt.Errorf("invalid number %q", raw)
		}
		numbers[i] = value
	}

	return LogEntry{
		Meal:     meal,
		Food:     record[1],
		Quantity: numbers[0],
		Unit:     unit,
		Macros:   Macros{Kcal: numbers[1], Protein: numbers[2], Carbs: numbers[3], Fat: numbers[4]},
	}, nil
}

// DayLogFilename 返回下载文件名，例如 intake_2025-10-01.csv
func DayLogFilename(date time.Time) string {
	return fmt.Sprintf("intake_%s.csv", date.Format(dateFormat))
}

func formatOneDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
