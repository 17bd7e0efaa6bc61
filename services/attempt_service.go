package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quizsite/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptService struct {
	db      *gorm.DB
	quizzes *QuizService
	cache   *StatsCache
	hub     *Hub
	now     func() time.Time
}

func NewAttemptService(db *gorm.DB, quizzes *QuizService, cache *StatsCache, hub *Hub) *AttemptService {
	return &AttemptService{
		db:      db,
		quizzes: quizzes,
		cache:   cache,
		hub:     hub,
		now:     time.Now,
	}
}

// SubmitAttemptRequest is what the answer form posts back. QuestionIDs is the
// comma-separated list handed out by the start endpoint.
type SubmitAttemptRequest struct {
	QuestionIDs string            `json:"question_ids"`
	Answers     map[string]string `json:"answers"`
}

type AttemptSummary struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	QuizID         uint      `json:"quiz_id"`
	QuizName       string    `json:"quiz_name,omitempty"`
	Score          float64   `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	DateAttempted  time.Time `json:"date_attempted"`
}

func Summarize(a *models.Attempt) AttemptSummary {
	summary := AttemptSummary{
		ID:             a.ID,
		UserID:         a.UserID,
		QuizID:         a.QuizID,
		Score:          a.Score,
		CorrectCount:   a.CorrectCount(),
		TotalQuestions: a.TotalQuestions(),
		DateAttempted:  a.DateAttempted,
	}
	if a.User != nil {
		summary.Username = a.User.Username
	}
	if a.Quiz != nil {
		summary.QuizName = a.Quiz.Name
	}
	return summary
}

// ParseQuestionIDs reads a comma-separated id list. Blank, non-numeric, non-positive
// and repeated ids are dropped; the first-seen order is kept.
func ParseQuestionIDs(raw string) []uint {
	ids := []uint{}
	seen := make(map[uint]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil || n == 0 {
			continue
		}
		id := uint(n)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// JoinQuestionIDs is the inverse of ParseQuestionIDs.
func JoinQuestionIDs(questions []models.Question) string {
	parts := make([]string, len(questions))
	for i, q := range questions {
		parts[i] = strconv.FormatUint(uint64(q.ID), 10)
	}
	return strings.Join(parts, ",")
}

// ScorePercent is correct/total as a percentage rounded to two decimals, 0 for no questions.
// Exact ties round to even, so 1 of 32 gives 3.12.
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(correct) / float64(total) * 100
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 2, 64), 64)
	if err != nil {
		return pct
	}
	return rounded
}

// BuildAttempt snapshots the presented questions with the submitted answers and
// scores them. Questions are kept in the order given. A missing or blank answer is
// stored as null and never counts as correct.
func BuildAttempt(userID, quizID uint, presented []models.Question, answers map[string]string, at time.Time) (*models.Attempt, error) {
	userAnswers := make(map[string]*string, len(presented))
	correctAnswers := make(map[string]string, len(presented))
	questionsData := make(map[string]models.QuestionSnapshot, len(presented))
	order := make([]string, 0, len(presented))

	correct := 0
	for _, q := range presented {
		qid := strconv.FormatUint(uint64(q.ID), 10)

		var answer *string
		if raw, ok := answers[qid]; ok {
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				answer = &trimmed
			}
		}

		snap, err := models.NewQuestionSnapshot(q, answer)
		if err != nil {
			return nil, err
		}

		userAnswers[qid] = answer
		correctAnswers[qid] = string(q.CorrectOption)
		questionsData[qid] = snap
		order = append(order, qid)
		if snap.IsCorrect() {
			correct++
		}
	}

	return &models.Attempt{
		UserID:         userID,
		QuizID:         quizID,
		Score:          ScorePercent(correct, len(presented)),
		DateAttempted:  at,
		UserAnswers:    datatypes.NewJSONType(userAnswers),
		CorrectAnswers: datatypes.NewJSONType(correctAnswers),
		QuestionsData:  datatypes.NewJSONType(questionsData),
		QuestionOrder:  datatypes.NewJSONSlice(order),
	}, nil
}

// RecordAttempt scores a submission for an active quiz and stores it as one
// immutable row. Ids that do not belong to the quiz are ignored.
func (s *AttemptService) RecordAttempt(ctx context.Context, userID, quizID uint, req *SubmitAttemptRequest) (*models.Attempt, error) {
	quiz, err := s.quizzes.GetActiveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	ids := ParseQuestionIDs(req.QuestionIDs)
	found, err := s.quizzes.GetQuestions(ctx, quiz.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	byID := make(map[uint]models.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	presented := make([]models.Question, 0, len(found))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			presented = append(presented, q)
		}
	}

	attempt, err := BuildAttempt(userID, quiz.ID, presented, req.Answers, s.now())
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			return notFound(err)
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	if s.hub != nil {
		summary := Summarize(attempt)
		summary.QuizName = quiz.Name
		s.hub.BroadcastAttempt(summary)
	}

	return attempt, nil
}

// GetUserAttempt returns an attempt only to the user who made it.
func (s *AttemptService) GetUserAttempt(ctx context.Context, userID, attemptID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.WithContext(ctx).
		Preload("Quiz").
		Preload("User").
		Where("id = ? AND user_id = ?", attemptID, userID).
		First(&attempt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

func (s *AttemptService) GetAttempt(ctx context.Context, attemptID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.WithContext(ctx).
		Preload("Quiz").
		Preload("User").
		First(&attempt, attemptID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

type AttemptFilter struct {
	UserID uint
	QuizID uint
	Limit  int
}

// ListAttempts returns attempts newest first, optionally narrowed by user and quiz.
func (s *AttemptService) ListAttempts(ctx context.Context, filter AttemptFilter) ([]AttemptSummary, error) {
	query := s.db.WithContext(ctx).Preload("Quiz").Preload("User")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.QuizID != 0 {
		query = query.Where("quiz_id = ?", filter.QuizID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var attempts []models.Attempt
	if err := query.Order("date_attempted DESC").Order("id DESC").Find(&attempts).Error; err != nil {
		return nil, err
	}

	summaries := make([]AttemptSummary, len(attempts))
	for i := range attempts {
		summaries[i] = Summarize(&attempts[i])
	}
	return summaries, nil
}
