package services

import (
	"context"
	"math/rand"

	"quizsite/models"
)

// Selector picks the questions a user is shown for one sitting of a quiz.
type Selector struct {
	quizzes *QuizService
	perm    func(n int) []int
}

func NewSelector(quizzes *QuizService) *Selector {
	return &Selector{quizzes: quizzes, perm: rand.Perm}
}

// Select applies the quiz's selection policy to bank, which must be in natural order.
// Fixed quizzes get a prefix; random quizzes get a sample of exactly NumQuestions
// distinct questions when the bank is large enough, otherwise the whole bank.
func (s *Selector) Select(quiz *models.Quiz, bank []models.Question) []models.Question {
	n := quiz.NumQuestions
	if n <= 0 || len(bank) == 0 {
		return []models.Question{}
	}

	if quiz.QuizType == models.QuizTypeRandom && len(bank) >= n {
		order := s.perm(len(bank))
		picked := make([]models.Question, 0, n)
		for _, idx := range order[:n] {
			picked = append(picked, bank[idx])
		}
		return picked
	}

	if n > len(bank) {
		n = len(bank)
	}
	picked := make([]models.Question, n)
	copy(picked, bank[:n])
	return picked
}

// SelectForQuiz loads an active quiz and its bank and applies Select.
func (s *Selector) SelectForQuiz(ctx context.Context, quizID uint) (*models.Quiz, []models.Question, error) {
	quiz, err := s.quizzes.GetActiveQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	bank, err := s.quizzes.GetQuestions(ctx, quiz.ID, nil)
	if err != nil {
		return nil, nil, err
	}

	return quiz, s.Select(quiz, bank), nil
}
