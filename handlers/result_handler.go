package handlers

import (
	"net/http"

	"quizsite/services"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	attemptService *services.AttemptService
	statsService   *services.StatsService
}

func NewResultHandler(attemptService *services.AttemptService, statsService *services.StatsService) *ResultHandler {
	return &ResultHandler{
		attemptService: attemptService,
		statsService:   statsService,
	}
}

func (h *ResultHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListAttempts(c.Request.Context(), services.AttemptFilter{UserID: userID})
	if err != nil {
		respondError(c, err, "Result not found")
		return
	}

	c.JSON(http.StatusOK, attempts)
}

func (h *ResultHandler) GetResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attemptID, ok := parseIDParam(c, "id", "attempt")
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetUserAttempt(c.Request.Context(), userID, attemptID)
	if err != nil {
		respondError(c, err, "Result not found")
		return
	}

	c.JSON(http.StatusOK, services.BuildReview(attempt))
}

func (h *ResultHandler) MyStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.UserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, stats)
}
