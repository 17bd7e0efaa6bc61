package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"quizsite/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	quizService    *services.QuizService
	attemptService *services.AttemptService
	statsService   *services.StatsService
	userService    *services.UserService
	hub            *services.Hub
}

func NewAdminHandler(
	quizService *services.QuizService,
	attemptService *services.AttemptService,
	statsService *services.StatsService,
	userService *services.UserService,
	hub *services.Hub,
) *AdminHandler {
	return &AdminHandler{
		quizService:    quizService,
		attemptService: attemptService,
		statsService:   statsService,
		userService:    userService,
		hub:            hub,
	}
}

func (h *AdminHandler) broadcast(messageType string, payload interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(messageType, payload)
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	recent := services.DefaultRecentAttempts
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recent must be a positive integer"})
			return
		}
		recent = n
	}

	dashboard, err := h.statsService.Dashboard(c.Request.Context(), recent)
	if err != nil {
		respondError(c, err, "Not found")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AdminHandler) Users(c *gin.Context) {
	rows, err := h.statsService.UserStatsTable(c.Request.Context())
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.DeleteUser(c.Request.Context(), actingID, userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	h.broadcast("user_deleted", gin.H{"user_id": user.ID, "username": user.Username})
	c.JSON(http.StatusOK, gin.H{"message": "User \"" + user.Username + "\" has been deleted successfully!"})
}

func (h *AdminHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.ListQuizzes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *AdminHandler) GetQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *AdminHandler) CreateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	h.broadcast("quiz_saved", gin.H{"quiz_id": quiz.ID, "name": quiz.Name})
	c.JSON(http.StatusCreated, quiz)
}

func (h *AdminHandler) UpdateQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	var req services.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.ReplaceQuiz(c.Request.Context(), quizID, &req)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	h.broadcast("quiz_saved", gin.H{"quiz_id": quiz.ID, "name": quiz.Name})
	c.JSON(http.StatusOK, quiz)
}

func (h *AdminHandler) DeleteQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuiz(c.Request.Context(), quizID); err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	h.broadcast("quiz_deleted", gin.H{"quiz_id": quizID})
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

func (h *AdminHandler) ImportQuestions(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An .xlsx file is required in the \"file\" field"})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx workbooks are supported"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	cfg := services.DefaultImportConfig()
	cfg.SheetName = c.PostForm("sheet")

	result, err := h.quizService.ImportQuestions(c.Request.Context(), quizID, file, cfg)
	if err != nil {
		respondError(c, err, "Quiz not found")
		return
	}

	if result.Created > 0 {
		h.broadcast("quiz_saved", gin.H{"quiz_id": quizID})
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) Results(c *gin.Context) {
	filter := services.AttemptFilter{
		UserID: queryID(c, "user"),
		QuizID: queryID(c, "quiz"),
	}

	attempts, err := h.attemptService.ListAttempts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Result not found")
		return
	}

	c.JSON(http.StatusOK, attempts)
}

func (h *AdminHandler) ViewResult(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id", "attempt")
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID)
	if err != nil {
		respondError(c, err, "Result not found")
		return
	}

	c.JSON(http.StatusOK, services.BuildReview(attempt))
}

// queryID reads an optional id filter; anything unparsable means "no filter".
func queryID(c *gin.Context, key string) uint {
	id, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
