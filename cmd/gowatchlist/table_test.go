package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Key", "Title", "Year"},
		[][]string{
			{"movie:603", "The Matrix", "1999"},
			{"tv:1399"},
		},
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)

	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines (3 borders, header, 2 rows), got %d:\n%s", len(lines), out)
	}
	for _, want := range []string{"KEY", "TITLE", "YEAR", "movie:603", "The Matrix", "1999", "tv:1399"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(lines[0], "╭") {
		t.Errorf("expected rounded border, got %q", lines[0])
	}
}

func TestRenderTableWithoutHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
