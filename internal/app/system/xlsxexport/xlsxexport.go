// Package xlsxexport renders simple tabular data as an .xlsx workbook.
package xlsxexport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StripeFill is the background of striped rows or columns.
const StripeFill = "EFEFEF"

// Stripe selects which cells get the StripeFill background.
type Stripe int

const (
	StripeNone Stripe = iota
	// StripeRows shades every other data row, starting with the first.
	StripeRows
	// StripeColumns shades every other column, starting with the second.
	StripeColumns
)

// Column is a header and its width in characters.
type Column struct {
	Header string
	Width  float64
}

// Sheet is a single worksheet.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
	Stripe  Stripe
}

// Build lays s out in a new workbook. The caller closes the file.
func Build(s Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	if err := layout(f, name, s); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func layout(f *excelize.File, name string, s Sheet) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return err
	}
	plain, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}
	shaded, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{StripeFill}},
	})
	if err != nil {
		return err
	}

	for i, col := range s.Columns {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(name, letter, letter, col.Width); err != nil {
				return err
			}
		}
		cell := letter + "1"
		if err := f.SetCellValue(name, cell, col.Header); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, cell, cell, header); err != nil {
			return err
		}
	}

	for r, row := range s.Rows {
		rowNum := r + 2
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			style := plain
			if s.shade(r, c) {
				style = shaded
			}
			if err := f.SetCellStyle(name, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// shade reports whether data cell (row, col), both 0-based, is striped.
func (s Sheet) shade(row, col int) bool {
	switch s.Stripe {
	case StripeRows:
		return row%2 == 0
	case StripeColumns:
		return col%2 == 1
	default:
		return false
	}
}

// Write renders s to w.
func Write(w io.Writer, s Sheet) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Serve renders s as a downloadable attachment named filename.
func Serve(w http.ResponseWriter, filename string, s Sheet) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	return f.Write(w)
}
