package models

import (
	"time"
)

// Option is one of the four canonical answer letters.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	default:
		return false
	}
}

type Question struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	QuizID        uint      `json:"quiz_id" gorm:"not null;index"`
	Text          string    `json:"text" gorm:"not null"`
	OptionA       string    `json:"option_a" gorm:"size:500;not null"`
	OptionB       string    `json:"option_b" gorm:"size:500;not null"`
	OptionC       string    `json:"option_c" gorm:"size:500;not null"`
	OptionD       string    `json:"option_d" gorm:"size:500;not null"`
	CorrectOption Option    `json:"correct_option" gorm:"size:1;not null"`
	Explanation   *string   `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
}

// OptionText returns the text behind the given letter, or "" for an unknown letter.
func (q *Question) OptionText(o Option) string {
	switch o {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// CorrectAnswerText returns the text of the correct option.
func (q *Question) CorrectAnswerText() string {
	return q.OptionText(q.CorrectOption)
}
