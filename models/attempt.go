package models

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"
)

// QuestionSnapshot is the frozen copy of a question stored inside an attempt.
type QuestionSnapshot struct {
	Text          string  `json:"text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	CorrectOption Option  `json:"correct_option"`
	Explanation   *string `json:"explanation"`
	UserAnswer    *string `json:"user_answer"`
}

// NewQuestionSnapshot copies q together with the user's answer. A nil answer means
// the question was left blank.
func NewQuestionSnapshot(q Question, answer *string) (QuestionSnapshot, error) {
	if !q.CorrectOption.Valid() {
		return QuestionSnapshot{}, fmt.Errorf("question %d: invalid correct option %q", q.ID, q.CorrectOption)
	}
	snap := QuestionSnapshot{
		Text:          q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectOption: q.CorrectOption,
	}
	if q.Explanation != nil {
		e := *q.Explanation
		snap.Explanation = &e
	}
	if answer != nil {
		a := *answer
		snap.UserAnswer = &a
	}
	return snap, nil
}

// IsCorrect compares the stored answer with the stored correct option.
func (s QuestionSnapshot) IsCorrect() bool {
	return s.UserAnswer != nil && *s.UserAnswer == string(s.CorrectOption)
}

type Attempt struct {
	ID             uint                                            `json:"id" gorm:"primaryKey"`
	UserID         uint                                            `json:"user_id" gorm:"not null;index"`
	QuizID         uint                                            `json:"quiz_id" gorm:"not null;index"`
	Score          float64                                         `json:"score" gorm:"not null"`
	DateAttempted  time.Time                                       `json:"date_attempted" gorm:"not null;index"`
	UserAnswers    datatypes.JSONType[map[string]*string]          `json:"user_answers"`
	CorrectAnswers datatypes.JSONType[map[string]string]           `json:"correct_answers"`
	QuestionsData  datatypes.JSONType[map[string]QuestionSnapshot] `json:"questions_data"`
	QuestionOrder  datatypes.JSONSlice[string]                     `json:"question_order"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (Attempt) TableName() string { return "user_quiz_attempts" }

// TotalQuestions is the number of questions presented in this attempt.
func (a *Attempt) TotalQuestions() int {
	return len(a.UserAnswers.Data())
}

// CorrectCount counts answers that match the correct option at submission time.
func (a *Attempt) CorrectCount() int {
	correct := a.CorrectAnswers.Data()
	count := 0
	for qid, answer := range a.UserAnswers.Data() {
		want, ok := correct[qid]
		if ok && answer != nil && *answer == want {
			count++
		}
	}
	return count
}

// OrderedQuestionIDs returns snapshot keys in presentation order. Keys not listed in
// QuestionOrder follow in sorted order so every snapshot entry is reachable.
func (a *Attempt) OrderedQuestionIDs() []string {
	data := a.QuestionsData.Data()
	ids := make([]string, 0, len(data))
	seen := make(map[string]bool, len(data))
	for _, id := range a.QuestionOrder {
		if _, ok := data[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range data {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}
