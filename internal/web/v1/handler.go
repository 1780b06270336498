// Package v1 wires the leaderboard's HTTP surface. Route paths are part of
// the shipped game client's contract and cannot change shape.
package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
	logicv1 "github.com/openflappy/leaderboard-service/internal/logic/v1"
	"github.com/openflappy/leaderboard-service/middleware"
)

const userContextKey = "authenticated_user"

// Handler groups the HTTP handlers. Dependencies are injected via the
// constructor; no global state.
type Handler struct {
	auth   *logicv1.AuthService
	scores *logicv1.ScoreService
	admin  *logicv1.AdminService
}

// NewHandler creates a Handler over the three service layers.
func NewHandler(auth *logicv1.AuthService, scores *logicv1.ScoreService, admin *logicv1.AdminService) *Handler {
	return &Handler{auth: auth, scores: scores, admin: admin}
}

// RegisterRoutes attaches every route. Paths mirror the original client
// protocol: flat, verb-ish names rather than REST nesting.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/users", h.Users)
	r.GET("/leaderboard/:amount", h.Leaderboard)
	r.GET("/user/:name", h.UserByName)
	r.GET("/getID/:name", h.UserID)
	r.GET("/globalDeaths", h.GlobalDeaths)
	r.GET("/userCount", h.UserCount)

	r.POST("/registerUser", h.Register)
	r.POST("/login", h.Login)

	authed := r.Group("/", h.RequireUser())
	authed.GET("/me", h.Me)
	authed.POST("/submitScore", h.SubmitScore)
	authed.POST("/submitDeath", h.SubmitDeath)
	authed.POST("/isJailbroken", h.integrityHandler(domain.FlagJailbroken))
	authed.POST("/emulator", h.integrityHandler(domain.FlagEmulator))
	authed.POST("/hasHackedTools", h.integrityHandler(domain.FlagHackedTools))

	authed.GET("/internal_users", h.InternalUsers)
	authed.GET("/ban/:userID/:reason", h.Ban)
	authed.GET("/unban/:userID", h.Unban)
	authed.GET("/restoreScore/:userID/:score", h.RestoreScore)
	authed.GET("/delete/:userID", h.DeleteUser)
	authed.GET("/makeAdmin/:userID", h.MakeAdmin)
}

// RequireUser resolves the bearer token to a user and stores it on the
// context. This is the single authentication boundary for every protected
// route.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		value := bearerToken(c.GetHeader("Authorization"))
		if value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		user, err := h.auth.Authenticate(c.Request.Context(), value)
		if err != nil {
			if !errors.Is(err, logicv1.ErrUnauthenticated) {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("token lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return header[len(prefix):]
}

// currentUser returns the user RequireUser stored. Only reachable behind
// that middleware.
func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userContextKey).(*domain.User)
}

// Register handles POST /registerUser.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.register", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.login", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /me.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Public())
}

// respondError maps logic-layer errors to HTTP responses. Login failures
// collapse to one message so the response does not reveal whether the name
// or the password was wrong.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *logicv1.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, logicv1.ErrInvalidCredentials), errors.Is(err, logicv1.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, logicv1.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
	case errors.Is(err, logicv1.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, logicv1.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, logicv1.ErrScoreRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to verify score"})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
