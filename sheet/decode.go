// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jcodagnone/sheetmap/utils/htmlutils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Format identifies how a spreadsheet export is encoded.
type Format int

const (
	// FormatUnknown could not be determined; decoders treat it as CSV.
	FormatUnknown Format = iota
	// FormatCSV comma separated values.
	FormatCSV
	// FormatTSV tab separated values.
	FormatTSV
	// FormatXLSX Office Open XML workbook, first sheet only.
	FormatXLSX
	// FormatHTML first <table> of an HTML document (published sheets).
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatXLSX:
		return "xlsx"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// FormatFromPath guesses the format from a file name or URL path extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatUnknown
	}
}

// FormatFromContentType maps a Content-Type header to a format.
func FormatFromContentType(contentType string) Format {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatUnknown
	}

	switch strings.ToLower(media) {
	case "text/csv", "application/csv":
		return FormatCSV
	case "text/tab-separated-values":
		return FormatTSV
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	default:
		return FormatUnknown
	}
}

// Decode reads a whole dataset in the given format.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatTSV:
		records, err = readDelimited(r, '\t')
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatHTML:
		records, err = readHTMLTable(r)
	default:
		records, err = readDelimited(r, ',')
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := NewDataset(records[0], records[1:])
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyDataset
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", sheetName, err)
	}

	return rows, nil
}

// Google Sheets "publish to web" tables carry row numbers and column letters
// as extra header cells marked with these classes.
const (
	rowHeaderClass    = "row-headers-background"
	columnHeaderClass = "column-headers-background"
	freezebarClass    = "freezebar"
)

func readHTMLTable(r io.Reader) ([][]string, error) {
	doc, err := htmlutils.AsNode(r)
	if err != nil {
		return nil, err
	}

	table := htmlutils.FindFirst(doc, atom.Table)
	if table == nil {
		return nil, nil
	}

	var records [][]string

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			if record, ok := tableRow(n); ok {
				records = append(records, record)
			}

			return
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			// nested tables are cell content, not rows of this table
			if child.Type == html.ElementNode && child.DataAtom == atom.Table {
				continue
			}

			visit(child)
		}
	}
	visit(table)

	return records, nil
}

func tableRow(tr *html.Node) ([]string, bool) {
	var (
		record        []string
		letterHeaders int
	)

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}

		class := htmlutils.Attr(c, "class")
		if strings.Contains(class, rowHeaderClass) || strings.Contains(class, freezebarClass) {
			continue
		}

		if strings.Contains(class, columnHeaderClass) {
			letterHeaders++
		}

		var sb strings.Builder
		htmlutils.NodeText(c, &sb)
		record = append(record, strings.TrimSpace(sb.String()))
	}

	if letterHeaders > 0 || isBlank(record) {
		return nil, false
	}

	return record, true
}
