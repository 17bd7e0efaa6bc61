package handlers

import (
	"net/http"

	"quizsite/models"
	"quizsite/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService    *services.QuizService
	selector       *services.Selector
	attemptService *services.AttemptService
}

func NewQuizHandler(quizService *services.QuizService, selector *services.Selector, attemptService *services.AttemptService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		selector:       selector,
		attemptService: attemptService,
	}
}

// questionView hides the answer key while a quiz is being taken.
type questionView struct {
	ID      uint   `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.ListActiveQuizzes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) StartQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	quiz, questions, err := h.selector.SelectForQuiz(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:      q.ID,
			Text:    q.Text,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"quiz":         quiz,
		"questions":    views,
		"question_ids": services.JoinQuestionIDs(questions),
		"options":      []models.Option{models.OptionA, models.OptionB, models.OptionC, models.OptionD},
	})
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.attemptService.RecordAttempt(c.Request.Context(), userID, quizID, &req)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"attempt_id":      attempt.ID,
		"score":           attempt.Score,
		"correct_count":   attempt.CorrectCount(),
		"total_questions": attempt.TotalQuestions(),
	})
}
