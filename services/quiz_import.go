package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"quizsite/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportConfig describes the spreadsheet layout. Columns are fixed:
// A text, B-E options A-D, F correct option, G explanation.
type ImportConfig struct {
	SheetName string // empty means the first sheet
	StartRow  int    // 1-based, rows above it are headers
}

func DefaultImportConfig() ImportConfig {
	return ImportConfig{StartRow: 2}
}

type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

const importColumns = 7

// ImportQuestions appends the valid rows of an .xlsx workbook to the quiz's bank in one
// transaction and refreshes total_questions. Invalid rows are reported, not fatal.
func (s *QuizService) ImportQuestions(ctx context.Context, quizID uint, r io.Reader, cfg ImportConfig) (*ImportResult, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidInput)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rows: %v", ErrInvalidInput, err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var inputs []QuestionInput
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		in, ok := rowToInput(row)
		if !ok {
			result.Skipped++
			continue
		}
		if err := in.Validate(); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return result, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			question := models.Question{QuizID: quizID}
			in.apply(&question)
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}

		var total int64
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
			return err
		}
		return tx.Model(&models.Quiz{}).Where("id = ?", quizID).Update("total_questions", total).Error
	})
	if err != nil {
		return nil, err
	}

	result.Created = len(inputs)
	s.cache.Invalidate(ctx)
	return result, nil
}

// rowToInput maps a sheet row onto a question. Rows without question text are blank.
func rowToInput(row []string) (QuestionInput, bool) {
	cells := make([]string, importColumns)
	for i := 0; i < importColumns && i < len(row); i++ {
		cells[i] = strings.TrimSpace(row[i])
	}
	if cells[0] == "" {
		return QuestionInput{}, false
	}

	in := QuestionInput{
		Text:          cells[0],
		OptionA:       cells[1],
		OptionB:       cells[2],
		OptionC:       cells[3],
		OptionD:       cells[4],
		CorrectOption: strings.ToUpper(cells[5]),
	}
	if cells[6] != "" {
		explanation := cells[6]
		in.Explanation = &explanation
	}
	return in, true
}
