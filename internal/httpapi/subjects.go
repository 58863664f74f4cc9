package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uniattend/internal/realtime"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

// ListSubjects returns the teacher's own subjects, or the subjects a
// student's cohort enrolls them in. Each entry carries its current roster
// size for the dashboard cards.
func (h *Handler) ListSubjects(c *gin.Context) {
	u := userFromCtx(c)
	var (
		list []subjects.Subject
		err  error
	)
	if u.Role == users.RoleTeacher {
		list, err = h.subjStore.ByTeacher(c.Request.Context(), u.ID)
	} else {
		list, err = h.subjStore.ByCohort(c.Request.Context(), u.Department, u.Semester)
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}

	type entry struct {
		subjects.Subject
		Students int `json:"students"`
	}
	out := make([]entry, 0, len(list))
	for _, sub := range list {
		members, err := h.resolver.Resolve(c.Request.Context(), sub.Department, sub.Semester)
		if err != nil {
			h.fail(c, http.StatusInternalServerError, err)
			return
		}
		out = append(out, entry{Subject: sub, Students: len(members)})
	}
	c.JSON(http.StatusOK, gin.H{"subjects": out})
}

// CreateSubject registers a subject for the teacher.
func (h *Handler) CreateSubject(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Department string `json:"department"`
		Semester   int    `json:"semester" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	sub, err := h.subjects.Create(c.Request.Context(), userFromCtx(c), req.Name, req.Department, req.Semester)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subject": sub})
}

// RenameSubject updates the display name.
func (h *Handler) RenameSubject(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	sub, err := h.subjects.Rename(c.Request.Context(), userFromCtx(c).ID, c.Param("id"), req.Name)
	if err != nil {
		h.subjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": sub})
}

// DeleteSubject removes the subject and its session records.
func (h *Handler) DeleteSubject(c *gin.Context) {
	if err := h.subjects.Delete(c.Request.Context(), userFromCtx(c).ID, c.Param("id")); err != nil {
		h.subjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Roster returns the subject's resolved roster in roll order.
func (h *Handler) Roster(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	members, err := h.resolver.Resolve(c.Request.Context(), sub.Department, sub.Semester)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject": sub,
		"roster":  members,
		"topic":   realtime.RosterTopic(sub.Department, sub.Semester),
	})
}

// ownedSubject loads the :id subject and enforces teacher ownership.
func (h *Handler) ownedSubject(c *gin.Context) (*subjects.Subject, bool) {
	sub, err := h.subjects.Owned(c.Request.Context(), userFromCtx(c).ID, c.Param("id"))
	if err != nil {
		h.subjectError(c, err)
		return nil, false
	}
	return sub, true
}

func (h *Handler) subjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, subjects.ErrNotOwner):
		h.fail(c, http.StatusForbidden, err)
	case errors.Is(err, subjects.ErrNotFound):
		h.fail(c, http.StatusNotFound, err)
	case errors.Is(err, subjects.ErrNameRequired):
		h.fail(c, http.StatusBadRequest, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}
