package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logicv1 "github.com/openflappy/leaderboard-service/internal/logic/v1"
)

// InternalUsers handles GET /internal_users: full records, moderation
// state included. Admin only.
func (h *Handler) InternalUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Ban handles GET /ban/:userID/:reason.
func (h *Handler) Ban(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.admin.Ban(c.Request.Context(), currentUser(c), targetID, c.Param("reason")); err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "User has been banned"})
}

// Unban handles GET /unban/:userID.
func (h *Handler) Unban(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.admin.Unban(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "User has been unbanned"})
}

// RestoreScore handles GET /restoreScore/:userID/:score.
func (h *Handler) RestoreScore(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	score, err := strconv.ParseInt(c.Param("score"), 10, 64)
	if err != nil || score < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid score"})
		return
	}
	if err := h.admin.RestoreScore(c.Request.Context(), currentUser(c), targetID, score); err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "Restored score to " + strconv.FormatInt(score, 10)})
}

// DeleteUser handles GET /delete/:userID.
func (h *Handler) DeleteUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.admin.Delete(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "User has been removed"})
}

// MakeAdmin handles GET /makeAdmin/:userID. Owner only.
func (h *Handler) MakeAdmin(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.admin.MakeAdmin(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.respondNotFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "User is now an admin"})
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// respondNotFoundOrError is respondError plus a 404 for missing targets,
// used on routes where "no such user" is not an authentication statement.
func (h *Handler) respondNotFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, logicv1.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.respondError(c, err)
}
