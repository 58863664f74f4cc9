package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uniattend/internal/metrics"
	"uniattend/internal/report"
	"uniattend/internal/users"
)

// Report returns the aggregated per-student table as JSON.
func (h *Handler) Report(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	sum, err := h.aggregator.Subject(c.Request.Context(), sub)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": sub, "summary": sum})
}

// ReportFile renders the report workbook as a download.
func (h *Handler) ReportFile(c *gin.Context) {
	sub, ok := h.ownedSubject(c)
	if !ok {
		return
	}
	sum, err := h.aggregator.Subject(c.Request.Context(), sub)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	f, err := report.Render(report.BuildSubjectTable(sub, sum, time.Now()))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="`+sub.Code+`-attendance.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("report write failed", zap.Error(err))
		return
	}
	metrics.ReportsGenerated.Inc()
}

// StudentHistory returns one student's stats and dated history. Students may
// read their own; the owning teacher may read anyone's.
func (h *Handler) StudentHistory(c *gin.Context) {
	u := userFromCtx(c)
	studentID := c.Param("studentID")

	sub, err := h.subjStore.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}

	switch {
	case u.Role == users.RoleStudent && u.ID == studentID:
		// Students read their own history for subjects their cohort enrolls
		// them in.
		if sub.Department != u.Department || sub.Semester != u.Semester {
			c.JSON(http.StatusForbidden, gin.H{"error": "not enrolled in this subject"})
			return
		}
	case u.Role == users.RoleTeacher && sub.TeacherID == u.ID:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	stat, history, err := h.aggregator.Student(c.Request.Context(), sub, studentID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": sub, "stats": stat, "history": history})
}
