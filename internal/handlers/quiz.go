package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/requestdata"
	"github.com/siplanskills/backend/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
	}
}

// GET /api/lessons/:id/quiz
// Served questions never include the correct answers.
func (h *QuizHandler) GetLessonQuiz(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	quiz, questions, err := h.quizSvc.GetLessonQuiz(c.Request.Context(), rd.AccountID, lessonID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"quiz_id":               quiz.ID,
		"tier":                  quiz.Tier,
		"passing_correct_count": quiz.PassingCorrectCount,
		"questions":             questions,
	})
}

type submitQuizRequest struct {
	QuizID  uuid.UUID                  `json:"quiz_id" binding:"required"`
	Answers []services.SubmittedAnswer `json:"answers"`
}

// POST /api/quizzes/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attempt, err := h.quizSvc.SubmitAttempt(c.Request.Context(), rd.AccountID, req.QuizID, req.Answers)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"approved":      attempt.Passed,
		"score":         attempt.Score,
		"correct_count": attempt.CorrectCount,
		"attempt_id":    attempt.ID,
	})
}
