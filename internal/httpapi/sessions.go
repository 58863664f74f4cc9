package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uniattend/internal/realtime"
	"uniattend/internal/session"
)

// SessionView returns the record for subject+date, or the default all-Present
// view when none exists yet. persisted tells the client whether a save has
// happened; the default is never written by viewing.
func (h *Handler) SessionView(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	rec, persisted, members, err := h.sessions.View(c.Request.Context(), sub, c.Param("date"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"record":    rec,
		"persisted": persisted,
		"roster":    members,
		"topic":     realtime.SessionTopic(sub.ID, rec.Date),
	})
}

// SessionSave overwrites the full record for subject+date.
func (h *Handler) SessionSave(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	var req struct {
		StartTime string                    `json:"start_time"`
		EndTime   string                    `json:"end_time"`
		Statuses  map[string]session.Status `json:"statuses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	rec, err := h.sessions.Save(c.Request.Context(), sub, c.Param("date"), session.Record{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Statuses:  req.Statuses,
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalid) {
			h.fail(c, http.StatusBadRequest, err)
			return
		}
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// QuickAbsent proposes a full mapping from a comma-separated roll list.
// Nothing is persisted; the client saves the result explicitly.
func (h *Handler) QuickAbsent(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	if err := session.ValidateDate(c.Param("date")); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Rolls string `json:"rolls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	statuses, marked, err := h.sessions.QuickAbsent(c.Request.Context(), sub, req.Rolls)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses, "marked_count": marked})
}
