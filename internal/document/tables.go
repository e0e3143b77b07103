package document

import (
	"regexp"
	"strings"
)

// Table is rows of cell text detected in layout-preserving output.
type Table struct {
	Rows [][]string
}

// cells in pdftotext -layout output are separated by runs of 2+ spaces
var cellSep = regexp.MustCompile(`\s{2,}`)

// minTableRows is the minimum number of consecutive multi-column lines that
// count as a table rather than incidental alignment.
const minTableRows = 2

// DetectTables scans layout-preserved page text for blocks of consecutive
// lines that split into the same number of columns. This mirrors what a
// layout-based PDF table extractor reports for simple grid tables; it makes
// no attempt at spanning cells or ruled-line geometry.
func DetectTables(pageText string) []Table {
	var tables []Table
	var current [][]string
	currentCols := 0

	flush := func() {
		if len(current) >= minTableRows {
			rows := make([][]string, len(current))
			copy(rows, current)
			tables = append(tables, Table{Rows: rows})
		}
		current = nil
		currentCols = 0
	}

	for _, line := range strings.Split(pageText, "\n") {
		cells := splitCells(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		if currentCols != 0 && len(cells) != currentCols {
			flush()
		}
		currentCols = len(cells)
		current = append(current, cells)
	}
	flush()

	return tables
}

func splitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	parts := cellSep.Split(trimmed, -1)
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}
