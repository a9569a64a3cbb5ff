// Package export writes stored test results as JSON or as an Excel workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/quizzer/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "json" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or xlsx)", s)
	}
}

// SheetName is the worksheet holding exported results.
const SheetName = "Results"

var header = []string{
	"ID", "Student ID", "Student Name", "Subject", "Score", "Total Questions",
	"Percentage", "Answers", "Report", "Created At",
}

// ResultsExport is the JSON export envelope.
type ResultsExport struct {
	ExportedAt time.Time          `json:"exported_at"`
	Count      int                `json:"count"`
	Results    []model.TestResult `json:"results"`
}

// Write writes results in the given format.
func Write(w io.Writer, format Format, results []model.TestResult) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return WriteJSON(w, results)
	}
}

// WriteJSON writes an indented ResultsExport followed by a newline.
func WriteJSON(w io.Writer, results []model.TestResult) error {
	if results == nil {
		results = []model.TestResult{}
	}
	data, err := json.MarshalIndent(ResultsExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(results),
		Results:    results,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with one header row and one row per result.
func WriteXLSX(w io.Writer, results []model.TestResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		pct := 0.0
		if r.TotalQuestions > 0 {
			pct = float64(r.Score) / float64(r.TotalQuestions) * 100
		}
		values := []any{
			r.ID, r.StudentID, r.StudentName, r.Subject, r.Score, r.TotalQuestions,
			pct, r.Answers, r.Report, r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
