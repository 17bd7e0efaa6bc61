package services

import (
	"context"
	"fmt"
	"strings"

	"quizsite/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

type QuizService struct {
	db    *gorm.DB
	cache *StatsCache
}

func NewQuizService(db *gorm.DB, cache *StatsCache) *QuizService {
	return &QuizService{db: db, cache: cache}
}

type QuizRequest struct {
	Name           string          `json:"name" binding:"required,max=200"`
	Description    string          `json:"description"`
	TimeLimit      int             `json:"time_limit" binding:"required,min=1"`
	NumQuestions   int             `json:"num_questions" binding:"required,min=1"`
	TotalQuestions int             `json:"total_questions" binding:"min=0"`
	QuizType       models.QuizType `json:"quiz_type" binding:"required,oneof=fixed random"`
	IsActive       *bool           `json:"is_active"`
	Questions      []QuestionInput `json:"questions"`
}

// QuestionInput is one row of the question set. Rows with blank text are skipped.
// A non-zero ID edits that question in place when it belongs to the quiz.
type QuestionInput struct {
	ID            uint    `json:"id"`
	Text          string  `json:"text" validate:"required"`
	OptionA       string  `json:"option_a" validate:"required,max=500"`
	OptionB       string  `json:"option_b" validate:"required,max=500"`
	OptionC       string  `json:"option_c" validate:"required,max=500"`
	OptionD       string  `json:"option_d" validate:"required,max=500"`
	CorrectOption string  `json:"correct_option" validate:"required,oneof=A B C D"`
	Explanation   *string `json:"explanation"`
}

func (in *QuestionInput) blank() bool {
	return strings.TrimSpace(in.Text) == ""
}

// Validate checks a non-blank row.
func (in *QuestionInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (in *QuestionInput) apply(q *models.Question) {
	q.Text = strings.TrimSpace(in.Text)
	q.OptionA = in.OptionA
	q.OptionB = in.OptionB
	q.OptionC = in.OptionC
	q.OptionD = in.OptionD
	q.CorrectOption = models.Option(in.CorrectOption)
	q.Explanation = nil
	if in.Explanation != nil && strings.TrimSpace(*in.Explanation) != "" {
		e := *in.Explanation
		q.Explanation = &e
	}
}

func (req *QuizRequest) apply(quiz *models.Quiz) {
	quiz.Name = strings.TrimSpace(req.Name)
	quiz.Description = req.Description
	quiz.TimeLimit = req.TimeLimit
	quiz.NumQuestions = req.NumQuestions
	quiz.TotalQuestions = req.TotalQuestions
	quiz.QuizType = req.QuizType
	quiz.IsActive = true
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
}

// questionRows validates the request's question set and drops blank rows.
func (req *QuizRequest) questionRows() ([]QuestionInput, error) {
	if !req.QuizType.Valid() {
		return nil, fmt.Errorf("%w: unknown quiz type %q", ErrInvalidInput, req.QuizType)
	}
	rows := make([]QuestionInput, 0, len(req.Questions))
	for i := range req.Questions {
		in := req.Questions[i]
		if in.blank() {
			continue
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		rows = append(rows, in)
	}
	return rows, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, creatorID uint, req *QuizRequest) (*models.Quiz, error) {
	rows, err := req.questionRows()
	if err != nil {
		return nil, err
	}

	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	quiz := models.Quiz{CreatedByID: creatorID}
	req.apply(&quiz)
	if quiz.TotalQuestions == 0 {
		quiz.TotalQuestions = len(rows)
	}

	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, in := range rows {
		question := models.Question{QuizID: quiz.ID}
		in.apply(&question)
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.GetQuiz(ctx, quiz.ID)
}

// ReplaceQuiz overwrites the quiz metadata and its whole question set atomically.
// Questions of the quiz that are not listed in req are deleted.
func (s *QuizService) ReplaceQuiz(ctx context.Context, quizID uint, req *QuizRequest) (*models.Quiz, error) {
	rows, err := req.questionRows()
	if err != nil {
		return nil, err
	}

	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]models.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		existing[q.ID] = q
	}

	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	req.apply(quiz)
	if quiz.TotalQuestions == 0 {
		quiz.TotalQuestions = len(rows)
	}
	quiz.Questions = nil
	if err := tx.Omit("CreatedBy", "Questions", "Attempts").Save(quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	kept := make(map[uint]bool, len(rows))
	for _, in := range rows {
		question, ok := existing[in.ID]
		if !ok || kept[in.ID] {
			question = models.Question{QuizID: quiz.ID}
		}
		in.apply(&question)
		if err := tx.Save(&question).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		kept[question.ID] = true
	}

	var stale []uint
	for id := range existing {
		if !kept[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("quiz_id = ? AND id IN ?", quiz.ID, stale).Delete(&models.Question{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.GetQuiz(ctx, quiz.ID)
}

// DeleteQuiz removes the quiz with its questions and every attempt taken on it.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Quiz{}, quizID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return deleteQuizChildren(tx, []uint{quizID})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

func deleteQuizChildren(tx *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}
	if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Attempt{}).Error; err != nil {
		return err
	}
	return tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Question{}).Error
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

// GetActiveQuiz returns the quiz without its questions; inactive quizzes are not found.
func (s *QuizService) GetActiveQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", quizID, true).
		First(&quiz).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

func (s *QuizService) ListActiveQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// GetQuestions returns the quiz's questions in natural order. A non-nil ids restricts
// the result to those ids; ids of other quizzes never match.
func (s *QuizService) GetQuestions(ctx context.Context, quizID uint, ids []uint) ([]models.Question, error) {
	if ids != nil && len(ids) == 0 {
		return []models.Question{}, nil
	}

	query := s.db.WithContext(ctx).Where("quiz_id = ?", quizID)
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}

	var questions []models.Question
	if err := query.Order("id").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
