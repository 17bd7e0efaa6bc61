package services

import (
	"quizsite/models"
)

type ReviewItem struct {
	QuestionID    string  `json:"question_id"`
	Text          string  `json:"text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Explanation   *string `json:"explanation"`
}

type AttemptReview struct {
	Attempt        AttemptSummary `json:"attempt"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Questions      []ReviewItem   `json:"questions_review"`
}

// ReviewAttempt rebuilds the per-question review from the attempt's own snapshot,
// never from the live question bank.
func ReviewAttempt(a *models.Attempt) []ReviewItem {
	data := a.QuestionsData.Data()
	ids := a.OrderedQuestionIDs()

	items := make([]ReviewItem, 0, len(ids))
	for _, qid := range ids {
		snap := data[qid]
		items = append(items, ReviewItem{
			QuestionID:    qid,
			Text:          snap.Text,
			OptionA:       snap.OptionA,
			OptionB:       snap.OptionB,
			OptionC:       snap.OptionC,
			OptionD:       snap.OptionD,
			UserAnswer:    snap.UserAnswer,
			CorrectAnswer: string(snap.CorrectOption),
			IsCorrect:     snap.IsCorrect(),
			Explanation:   snap.Explanation,
		})
	}
	return items
}

func BuildReview(a *models.Attempt) *AttemptReview {
	summary := Summarize(a)
	return &AttemptReview{
		Attempt:        summary,
		CorrectCount:   summary.CorrectCount,
		TotalQuestions: summary.TotalQuestions,
		Questions:      ReviewAttempt(a),
	}
}
