// Package importer reads wall centerline segments and openings from drawings
// and tables. DXF, SVG, CSV and Excel sources are supported. Tabular imports
// detect the delimiter and map columns by case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/wallplan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Problems are
// reported as messages instead of failing the whole import.
type ImportResult struct {
	Segments []model.WallSegment
	Openings []model.Opening
	Errors   []string
	Warnings []string
}

// merge appends the contents of other to r.
func (r *ImportResult) merge(other ImportResult) {
	r.Segments = append(r.Segments, other.Segments...)
	r.Openings = append(r.Openings, other.Openings...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ColumnMapping maps segment table roles to their indices in the data.
type ColumnMapping struct {
	X1    int
	Y1    int
	X2    int
	Y2    int
	Layer int
}

// OpeningMapping maps opening table roles to their indices in the data.
type OpeningMapping struct {
	Chain  int
	Offset int
	Width  int
	Sill   int
	Height int
}

// headerAliases maps canonical segment column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x1":    {"x1", "start x", "startx", "from x", "sx"},
	"y1":    {"y1", "start y", "starty", "from y", "sy"},
	"x2":    {"x2", "end x", "endx", "to x", "ex"},
	"y2":    {"y2", "end y", "endy", "to y", "ey"},
	"layer": {"layer", "tag", "group"},
}

// openingAliases maps canonical opening column names to their accepted aliases (all lowercase).
var openingAliases = map[string][]string{
	"chain":  {"chain", "chain id", "chain_id", "wall", "wall id"},
	"offset": {"offset", "position", "pos", "distance"},
	"width":  {"width", "w"},
	"sill":   {"sill", "sill height", "bottom"},
	"height": {"height", "h"},
}

// Import reads a file and picks the importer from its extension. Layers only
// filter DXF and SVG drawings.
func Import(path string, layers ...string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dxf":
		return ImportDXF(path, layers...)
	case ".svg":
		return ImportSVG(path, layers...)
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
	}
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// matchHeader returns, for each canonical role, the index of the first cell
// that matches one of its aliases.
func matchHeader(row []string, aliases map[string][]string) map[string]int {
	found := make(map[string]int)
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, names := range aliases {
			if _, ok := found[role]; ok {
				continue
			}
			for _, alias := range names {
				if normalized == alias {
					found[role] = i
					break
				}
			}
		}
	}
	return found
}

func indexOr(found map[string]int, role string) int {
	if i, ok := found[role]; ok {
		return i
	}
	return -1
}

// DetectColumns examines a header row and returns a segment ColumnMapping.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (X1, Y1, X2, Y2, Layer) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	found := matchHeader(row, headerAliases)
	if len(found) == 0 {
		return ColumnMapping{X1: 0, Y1: 1, X2: 2, Y2: 3, Layer: 4}, false
	}
	return ColumnMapping{
		X1:    indexOr(found, "x1"),
		Y1:    indexOr(found, "y1"),
		X2:    indexOr(found, "x2"),
		Y2:    indexOr(found, "y2"),
		Layer: indexOr(found, "layer"),
	}, true
}

// DetectOpeningColumns examines a header row for an opening table. A row is
// an opening header when it names both a chain and an offset column.
func DetectOpeningColumns(row []string) (OpeningMapping, bool) {
	found := matchHeader(row, openingAliases)
	_, hasChain := found["chain"]
	_, hasOffset := found["offset"]
	if !hasChain || !hasOffset {
		return OpeningMapping{}, false
	}
	return OpeningMapping{
		Chain:  indexOr(found, "chain"),
		Offset: indexOr(found, "offset"),
		Width:  indexOr(found, "width"),
		Sill:   indexOr(found, "sill"),
		Height: indexOr(found, "height"),
	}, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber reads a required numeric cell.
func parseNumber(row []string, idx int, rowLabel, name string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	return v, ""
}

// parseSegmentRow extracts a WallSegment from a row using the given column mapping.
// Returns the segment, any error message, and any warning message.
func parseSegmentRow(row []string, mapping ColumnMapping, rowLabel string) (model.WallSegment, string, string) {
	cols := []struct {
		idx  int
		name string
	}{
		{mapping.X1, "x1"}, {mapping.Y1, "y1"}, {mapping.X2, "x2"}, {mapping.Y2, "y2"},
	}
	var v [4]float64
	for i, c := range cols {
		n, errMsg := parseNumber(row, c.idx, rowLabel, c.name)
		if errMsg != "" {
			return model.WallSegment{}, errMsg, ""
		}
		v[i] = n
	}

	seg := model.NewWallSegment(v[0], v[1], v[2], v[3], getCell(row, mapping.Layer))
	var warning string
	if seg.Length() == 0 {
		warning = fmt.Sprintf("%s: Zero-length segment", rowLabel)
	}
	return seg, "", warning
}

// parseOpeningRow extracts an Opening from a row. A missing sill means the
// opening starts at the floor.
func parseOpeningRow(row []string, mapping OpeningMapping, rowLabel string) (model.Opening, string) {
	chain := getCell(row, mapping.Chain)
	if chain == "" {
		return model.Opening{}, fmt.Sprintf("%s: Missing chain value", rowLabel)
	}
	offset, errMsg := parseNumber(row, mapping.Offset, rowLabel, "offset")
	if errMsg != "" {
		return model.Opening{}, errMsg
	}
	width, errMsg := parseNumber(row, mapping.Width, rowLabel, "width")
	if errMsg != "" {
		return model.Opening{}, errMsg
	}
	height, errMsg := parseNumber(row, mapping.Height, rowLabel, "height")
	if errMsg != "" {
		return model.Opening{}, errMsg
	}
	sill := 0.0
	if getCell(row, mapping.Sill) != "" {
		if sill, errMsg = parseNumber(row, mapping.Sill, rowLabel, "sill"); errMsg != "" {
			return model.Opening{}, errMsg
		}
	}

	if offset < 0 || sill < 0 {
		return model.Opening{}, fmt.Sprintf("%s: Offset and sill must not be negative", rowLabel)
	}
	if width <= 0 || height <= 0 {
		return model.Opening{}, fmt.Sprintf("%s: Width and height must be positive", rowLabel)
	}
	return model.Opening{ChainID: chain, Offset: offset, Width: width, Sill: sill, Height: height}, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports segments or openings from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports segments or openings from a CSV reader with a
// specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports an Excel (.xlsx) workbook. Every non-empty sheet is
// read; sheets with an opening header yield openings, all others segments.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	read := 0
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read sheet %q: %v", sheet, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		read++
		result.merge(importFromRows(rows, sheet+" row", nil))
	}

	if read == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "Workbook is empty")
	}
	return result
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects the table kind from the header and parses each row.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	if mapping, ok := DetectOpeningColumns(rows[0]); ok {
		result.Warnings = append(result.Warnings, "Detected opening table")
		if mapping.Width == -1 || mapping.Height == -1 {
			missing := []string{}
			if mapping.Width == -1 {
				missing = append(missing, "Width")
			}
			if mapping.Height == -1 {
				missing = append(missing, "Height")
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
		for i := 1; i < len(rows); i++ {
			if isEmptyRow(rows[i]) {
				continue
			}
			o, errMsg := parseOpeningRow(rows[i], mapping, fmt.Sprintf("%s %d", rowPrefix, i+1))
			if errMsg != "" {
				result.Errors = append(result.Errors, errMsg)
				continue
			}
			result.Openings = append(result.Openings, o)
		}
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		for _, c := range []struct {
			idx  int
			name string
		}{{mapping.X1, "X1"}, {mapping.Y1, "Y1"}, {mapping.X2, "X2"}, {mapping.Y2, "Y2"}} {
			if c.idx == -1 {
				missing = append(missing, c.name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > 0 {
		// An unrecognized header still has a non-numeric first cell
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		seg, errMsg, warning := parseSegmentRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Segments = append(result.Segments, seg)
	}

	return result
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
