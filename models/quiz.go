package models

import (
	"time"
)

type QuizType string

const (
	QuizTypeFixed  QuizType = "fixed"
	QuizTypeRandom QuizType = "random"
)

func (t QuizType) Valid() bool {
	switch t {
	case QuizTypeFixed, QuizTypeRandom:
		return true
	default:
		return false
	}
}

type Quiz struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:200;not null"`
	Description    string    `json:"description"`
	TimeLimit      int       `json:"time_limit" gorm:"not null"` // minutes, display only
	NumQuestions   int       `json:"num_questions" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	QuizType       QuizType  `json:"quiz_type" gorm:"size:10;not null;default:'fixed'"`
	IsActive       bool      `json:"is_active" gorm:"not null"`
	CreatedByID    uint      `json:"created_by_id" gorm:"not null;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	CreatedBy *User      `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Attempts  []Attempt  `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}
