package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestReadTableDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "comma", input: "a,b,c\n1,2,3\n"},
		{name: "semicolon", input: "a;b;c\n1;2;3\n"},
		{name: "tab", input: "a\tb\tc\n1\t2\t3\n"},
		{name: "bom", input: "\ufeffa,b,c\r\n1,2,3\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadTable returned error: %v", err)
			}
			if !reflect.DeepEqual(table.Header, []string{"a", "b", "c"}) {
				t.Fatalf("unexpected header: %q", table.Header)
			}
			if len(table.Rows) != 1 || !reflect.DeepEqual(table.Rows[0], []string{"1", "2", "3"}) {
				t.Fatalf("unexpected rows: %q", table.Rows)
			}
		})
	}
}

func TestReadTableRaggedAndBlankRows(t *testing.T) {
	table, err := ReadTable(strings.NewReader("a,b,c\n1,2\n,,\n\n4,5,6,7\n"))
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(table.Rows), table.Rows)
	}
	if len(table.Rows[0]) != 2 || len(table.Rows[1]) != 4 {
		t.Fatalf("expected ragged rows to be kept as-is, got %q", table.Rows)
	}
}

func TestReadTableEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n", "\ufeff"} {
		if _, err := ReadTable(strings.NewReader(input)); !errors.Is(err, ErrCatalogUnreadable) {
			t.Fatalf("expected ErrCatalogUnreadable for %q, got %v", input, err)
		}
	}
}
