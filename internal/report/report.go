// Package report renders top-K results for people.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/xuri/excelize/v2"

	"pnlcorr/internal/correlation"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "correlations"

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Markdown lays t out as one table: a rank column, then a label and a
// correlation column for every requested series.
func Markdown(t *correlation.TopK) string {
	var b strings.Builder

	b.WriteString("| rank |")
	for _, col := range t.ColLabels {
		fmt.Fprintf(&b, " %s | corr |", escapeCell(col))
	}
	b.WriteString("\n|---:|")
	for range t.ColLabels {
		b.WriteString("---|---:|")
	}
	b.WriteByte('\n')

	for r := range t.Rows() {
		fmt.Fprintf(&b, "| %d |", r+1)
		for c := range t.ColLabels {
			fmt.Fprintf(&b, " %s | %s |", escapeCell(t.RowLabels[r][c]), formatCorr(t.Correlations[r][c]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render formats the Markdown table for a terminal of the given width.
func Render(t *correlation.TopK, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(Markdown(t))
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return out, nil
}

// WriteXLSX saves t as a workbook with the Markdown layout.
func WriteXLSX(path string, t *correlation.TopK) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"rank"}
	for _, col := range t.ColLabels {
		header = append(header, col, "corr")
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r := range t.Rows() {
		row := []any{r + 1}
		for c := range t.ColLabels {
			v := t.Correlations[r][c]
			var cell any = v
			if math.IsNaN(v) || math.IsInf(v, 0) {
				cell = formatCorr(v)
			}
			row = append(row, t.RowLabels[r][c], cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
