package bank

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/quizzer/internal/model"
)

// xlsxLayout maps header names to column indexes of one sheet.
type xlsxLayout struct {
	id, question, correct int
	options               map[string]int
}

// loadXLSX reads one sheet per subject. The first row is a header with the
// columns ID, Question and Correct Answer; every other named column is an
// option keyed by its header (usually A, B, C, D).
func loadXLSX(path string) ([]model.Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var questions []model.Question
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		layout, err := parseHeader(rows[0])
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		subject := strings.TrimSpace(sheet)
		for i, row := range rows[1:] {
			localID := cell(row, layout.id)
			if localID == "" {
				continue
			}
			keyed := make(map[string]string, len(layout.options))
			for key, col := range layout.options {
				if v := cell(row, col); v != "" {
					keyed[key] = v
				}
			}
			q := model.Question{
				UniqueID:      UniqueID(subject, localID),
				Subject:       subject,
				Text:          cell(row, layout.question),
				Options:       renderKeyed(keyed),
				CorrectAnswer: cell(row, layout.correct),
			}
			if q.Text == "" {
				return nil, fmt.Errorf("sheet %s row %d: empty question", sheet, i+2)
			}
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func parseHeader(header []string) (xlsxLayout, error) {
	l := xlsxLayout{id: -1, question: -1, correct: -1, options: make(map[string]int)}
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch strings.ToLower(strings.ReplaceAll(name, "_", " ")) {
		case "":
		case "id":
			l.id = i
		case "question":
			l.question = i
		case "correct answer", "answer":
			l.correct = i
		default:
			l.options[name] = i
		}
	}
	if l.id < 0 || l.question < 0 || l.correct < 0 {
		return l, fmt.Errorf("header must contain ID, Question and Correct Answer columns")
	}
	return l, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
