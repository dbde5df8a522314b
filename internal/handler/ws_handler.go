package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/middleware"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stemsi/quizgate/internal/service"
	ws "github.com/stemsi/quizgate/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler serves the quiz over a single WebSocket connection.
type WSHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizService *service.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// QuizStream godoc
// WS /ws/quiz
// Actions: questions, submit, ping. The session id comes from the message,
// falling back to the cookie presented at upgrade time.
func (h *WSHandler) QuizStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ws.MaxMessageBytes)

	sessionID := middleware.SessionID(c)
	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Debug().Msg("Client connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		if msg.Session != "" {
			sessionID = msg.Session
		}

		switch msg.Action {
		case ws.ActionQuestions:
			sessionID = h.handleQuestions(c, conn, sessionID)
		case ws.ActionSubmit:
			h.handleSubmit(c, conn, wsLog, sessionID, msg.Answers)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.ResponsePayload{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleQuestions sends the session's questions and returns the session id in
// use, which may be newly minted.
func (h *WSHandler) handleQuestions(c *gin.Context, conn *websocket.Conn, sessionID string) string {
	sess, _ := h.quizService.Questions(c.Request.Context(), sessionID)
	ws.WriteJSON(conn, ws.EventQuestions, model.QuestionsResponse{
		Session:   sess.ID,
		Questions: sess.StudentView(),
	})
	return sess.ID
}

func (h *WSHandler) handleSubmit(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID string, answers []model.SubmittedAnswer) {
	res, err := h.quizService.Submit(c.Request.Context(), sessionID, answers)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			ws.WriteError(conn, service.ErrInvalidSession.Error())
			return
		}
		wsLog.Error().Err(err).Msg("Grading failed")
		ws.WriteError(conn, "grading failed")
		return
	}
	ws.WriteJSON(conn, ws.EventGraded, res)
}
