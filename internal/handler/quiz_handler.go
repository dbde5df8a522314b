package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/middleware"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stemsi/quizgate/internal/response"
	"github.com/stemsi/quizgate/internal/service"
	"github.com/stemsi/quizgate/internal/validator"
)

// QuizHandler serves the quiz REST endpoints.
type QuizHandler struct {
	quizService *service.QuizService
	cookie      middleware.SessionCookie
	log         zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, cookie middleware.SessionCookie, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		cookie:      cookie,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/questions
// Returns the caller's session questions, creating a session when the cookie
// is missing or unknown. Answer keys never leave the server.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	sess, _ := h.quizService.Questions(c.Request.Context(), middleware.SessionID(c))

	h.cookie.Set(c, sess.ID)
	response.Success(c, http.StatusOK, model.QuestionsResponse{
		Session:   sess.ID,
		Questions: sess.StudentView(),
	})
}

// Submit godoc
// POST /api/submit
// Grades answers against the session named in the body (or the cookie).
func (h *QuizHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessionID := req.Session
	if sessionID == "" {
		sessionID = middleware.SessionID(c)
	}

	res, err := h.quizService.Submit(c.Request.Context(), sessionID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidSession)
			return
		}
		h.log.Error().Err(err).Msg("Submit failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// ResetSession godoc
// POST /api/session/reset
// Forgets the caller's session and clears the cookie so the next
// GetQuestions draws a new set.
func (h *QuizHandler) ResetSession(c *gin.Context) {
	removed := h.quizService.Reset(middleware.SessionID(c))
	h.cookie.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"reset": removed})
}
