package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
	logicv1 "github.com/openflappy/leaderboard-service/internal/logic/v1"
	"github.com/openflappy/leaderboard-service/middleware"
)

const defaultLeaderboardSize = 100

// SubmitScore handles POST /submitScore. Any failure to decode or verify
// the payload yields the same generic rejection; the distinct outcomes are
// accepted and banned.
func (h *Handler) SubmitScore(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "score.submit", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	user := currentUser(c)

	var req domain.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.CountScoreSubmission("rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to verify score"})
		return
	}

	outcome, err := h.scores.SubmitScore(ctx, user, req)
	if err != nil {
		span.RecordError(err)
		middleware.CountScoreSubmission("rejected")
		h.respondError(c, err)
		return
	}

	switch outcome {
	case logicv1.ScoreBanned:
		middleware.CountScoreSubmission("banned")
		span.SetAttributes(attribute.String("score.outcome", "banned"))
		c.JSON(http.StatusForbidden, gin.H{"status": "banned", "reason": logicv1.BanReasonCheating})
	default:
		middleware.CountScoreSubmission("accepted")
		span.SetAttributes(attribute.String("score.outcome", "accepted"))
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	}
}

// SubmitDeath handles POST /submitDeath.
func (h *Handler) SubmitDeath(c *gin.Context) {
	if err := h.scores.SubmitDeath(c.Request.Context(), currentUser(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// integrityHandler builds the handler for one client-integrity endpoint.
func (h *Handler) integrityHandler(flag domain.IntegrityFlag) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.scores.ReportIntegrity(c.Request.Context(), currentUser(c), flag); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	}
}

// Users handles GET /users.
func (h *Handler) Users(c *gin.Context) {
	users, err := h.scores.Users(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Leaderboard handles GET /leaderboard/:amount.
func (h *Handler) Leaderboard(c *gin.Context) {
	amount, err := strconv.Atoi(c.Param("amount"))
	if err != nil || amount <= 0 {
		amount = defaultLeaderboardSize
	}

	board, err := h.scores.Leaderboard(c.Request.Context(), amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// UserByName handles GET /user/:name.
func (h *Handler) UserByName(c *gin.Context) {
	user, err := h.scores.UserByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UserID handles GET /getID/:name, returning the bare id string.
func (h *Handler) UserID(c *gin.Context) {
	id, err := h.scores.UserID(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.String(http.StatusOK, id.String())
}

// GlobalDeaths handles GET /globalDeaths, returning the bare total.
func (h *Handler) GlobalDeaths(c *gin.Context) {
	deaths, err := h.scores.GlobalDeaths(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.String(http.StatusOK, strconv.FormatInt(deaths, 10))
}

// UserCount handles GET /userCount, returning the bare count.
func (h *Handler) UserCount(c *gin.Context) {
	count, err := h.scores.PlayerCount(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.String(http.StatusOK, strconv.FormatInt(count, 10))
}
