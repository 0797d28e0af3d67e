package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/pkg/response"
)

type branchService interface {
	AddExam(ctx context.Context, branch string, raw models.RawExam) (*models.BranchExam, error)
	List(ctx context.Context, branch string) (*dto.BranchTimetableResponse, error)
	Clear(ctx context.Context, branch string) (int64, error)
	Analyze(ctx context.Context, req dto.BranchAnalyzeRequest) (*models.BranchAnalysis, error)
}

// BranchHandler manages per-branch timetables.
type BranchHandler struct {
	service branchService
}

// NewBranchHandler constructs the handler.
func NewBranchHandler(service branchService) *BranchHandler {
	return &BranchHandler{service: service}
}

// AddExam godoc
// @Summary Add an exam to a branch timetable
// @Tags Branches
// @Accept json
// @Produce json
// @Param branch path string true "Branch"
// @Param payload body object true "Raw exam"
// @Success 201 {object} response.Envelope
// @Router /branches/{branch}/exams [post]
func (h *BranchHandler) AddExam(c *gin.Context) {
	var raw models.RawExam
	if !bindJSON(c, &raw) {
		return
	}
	exam, err := h.service.AddExam(c.Request.Context(), c.Param("branch"), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// List godoc
// @Summary List a branch timetable
// @Tags Branches
// @Produce json
// @Param branch path string true "Branch"
// @Success 200 {object} response.Envelope
// @Router /branches/{branch}/exams [get]
func (h *BranchHandler) List(c *gin.Context) {
	timetable, err := h.service.List(c.Request.Context(), c.Param("branch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Clear godoc
// @Summary Clear a branch timetable
// @Tags Branches
// @Produce json
// @Param branch path string true "Branch"
// @Success 200 {object} response.Envelope
// @Router /branches/{branch}/exams [delete]
func (h *BranchHandler) Clear(c *gin.Context) {
	removed, err := h.service.Clear(c.Request.Context(), c.Param("branch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil, map[string]interface{}{
		"message": fmt.Sprintf("%d exam(s) removed", removed),
	})
}

// Analyze godoc
// @Summary Compare branch timetables
// @Tags Branches
// @Accept json
// @Produce json
// @Param payload body dto.BranchAnalyzeRequest false "Branches to compare"
// @Success 200 {object} response.Envelope
// @Router /branches/analyze [post]
func (h *BranchHandler) Analyze(c *gin.Context) {
	var req dto.BranchAnalyzeRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	analysis, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis, nil)
}
