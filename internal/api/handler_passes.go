package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createPassRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	IssuerID    string `json:"issuerId" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// CreatePass handles POST /api/passes.
func (h *Handler) CreatePass(c *gin.Context) {
	var req createPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.manager.Create(c.Request.Context(), req.StudentID, req.IssuerID, req.Type, req.Destination)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !res.Approved {
		c.JSON(http.StatusOK, gin.H{"approved": false, "reason": string(res.Reason)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"approved":                true,
		"passId":                  res.PassID,
		"expectedDurationSeconds": int(res.ExpectedDuration.Seconds()),
	})
}

type updateLocationRequest struct {
	Location string `json:"location" binding:"required"`
}

// UpdateLocation handles POST /api/passes/:pass_id/locations.
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.manager.UpdateLocation(c.Request.Context(), c.Param("pass_id"), req.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.NotFound {
		c.JSON(http.StatusNotFound, gin.H{"notFound": true})
		return
	}

	violations := res.Violations
	if violations == nil {
		violations = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "violations": violations})
}

// CompletePass handles POST /api/passes/:pass_id/complete.
func (h *Handler) CompletePass(c *gin.Context) {
	res, err := h.manager.Complete(c.Request.Context(), c.Param("pass_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.NotFound {
		c.JSON(http.StatusNotFound, gin.H{"notFound": true})
		return
	}

	violations := res.Violations
	if violations == nil {
		violations = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"completed":             true,
		"actualDurationSeconds": int(res.ActualDuration.Seconds()),
		"violations":            violations,
	})
}

// activePassResponse is the API shape for an active pass.
type activePassResponse struct {
	PassID                  string    `json:"passId"`
	StudentID               string    `json:"studentId"`
	IssuerID                string    `json:"issuerId"`
	Type                    string    `json:"type"`
	Destination             string    `json:"destination"`
	StartTime               time.Time `json:"startTime"`
	ExpectedDurationSeconds int       `json:"expectedDurationSeconds"`
	Status                  string    `json:"status"`
	Route                   []string  `json:"route"`
	Violations              []string  `json:"violations"`
}

// ListActivePasses handles GET /api/passes.
func (h *Handler) ListActivePasses(c *gin.Context) {
	passes, err := h.manager.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]activePassResponse, 0, len(passes))
	for _, p := range passes {
		response = append(response, activePassResponse{
			PassID:                  p.ID,
			StudentID:               p.StudentID,
			IssuerID:                p.IssuerID,
			Type:                    string(p.Type),
			Destination:             p.Destination,
			StartTime:               p.StartTime,
			ExpectedDurationSeconds: int(p.ExpectedDuration.Seconds()),
			Status:                  string(p.Status()),
			Route:                   p.Route(),
			Violations:              p.Violations(),
		})
	}
	c.JSON(http.StatusOK, response)
}

// reportRecordResponse is the API shape for one archived pass.
type reportRecordResponse struct {
	PassID                  string    `json:"passId"`
	Type                    string    `json:"type"`
	Destination             string    `json:"destination"`
	StartTime               time.Time `json:"startTime"`
	CompletedAt             time.Time `json:"completedAt"`
	ExpectedDurationSeconds int       `json:"expectedDurationSeconds"`
	ActualDurationSeconds   int       `json:"actualDurationSeconds"`
	Violations              []string  `json:"violations"`
}

// GetStudentReport handles GET /api/students/:student_id/report.
func (h *Handler) GetStudentReport(c *gin.Context) {
	rep, err := h.manager.Report(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	records := make([]reportRecordResponse, 0, len(rep.Records))
	for _, rec := range rep.Records {
		violations := rec.Violations
		if violations == nil {
			violations = []string{}
		}
		records = append(records, reportRecordResponse{
			PassID:                  rec.PassID,
			Type:                    string(rec.Type),
			Destination:             rec.Destination,
			StartTime:               rec.StartTime,
			CompletedAt:             rec.CompletedAt,
			ExpectedDurationSeconds: int(rec.ExpectedDuration.Seconds()),
			ActualDurationSeconds:   int(rec.ActualDuration.Seconds()),
			Violations:              violations,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"studentId":                    rep.StudentID,
		"totalPasses":                  rep.TotalPasses,
		"totalViolations":              rep.TotalViolations,
		"averageActualDurationSeconds": int(rep.AverageActualDuration.Seconds()),
		"records":                      records,
	})
}
