package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kasa/internal/errors"
	"kasa/internal/models"
	"kasa/internal/services"
)

// AnalysisHandler serves the period-scoped summary.
type AnalysisHandler struct {
	analysis services.AnalysisAggregator
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysis services.AnalysisAggregator) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// AnalysisQuery selects the summary to show. Omitted fields keep the current selection.
type AnalysisQuery struct {
	Period string `form:"period" binding:"omitempty,analysis_period"`
	Page   string `form:"page" binding:"omitempty,analysis_page"`
	Offset *int   `form:"offset" binding:"omitempty,min=0"`
}

// GetAnalysis handles reading the summary, optionally changing the selection first.
// @Summary     Get analysis summary
// @Description Totals, net amount, savings rate and per-category segments for one period
// @Tags        analysis
// @Produce     json
// @Param       period query string false "weekly/monthly/yearly"
// @Param       page   query string false "expense/income"
// @Param       offset query int    false "Periods back from the current one (0 = current)"
// @Success     200 {object} models.AnalysisSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /analysis [get]
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	var q AnalysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if q.Period != "" {
		if err := h.analysis.SetPeriod(models.AnalysisPeriod(q.Period)); err != nil {
			respondWithError(c, err)
			return
		}
	}
	if q.Page != "" {
		if err := h.analysis.SetPage(models.AnalysisPage(q.Page)); err != nil {
			respondWithError(c, err)
			return
		}
	}
	if q.Offset != nil {
		if err := h.analysis.SetTimeOffset(*q.Offset); err != nil {
			respondWithError(c, err)
			return
		}
	}

	h.respond(c)
}

// NextPeriod handles moving one period toward the present.
// @Summary     Next period
// @Tags        analysis
// @Produce     json
// @Success     200 {object} models.AnalysisSummary "Summary"
// @Router      /analysis/next [post]
func (h *AnalysisHandler) NextPeriod(c *gin.Context) {
	h.analysis.NextPeriod()
	h.respond(c)
}

// PreviousPeriod handles moving one period into the past.
// @Summary     Previous period
// @Tags        analysis
// @Produce     json
// @Success     200 {object} models.AnalysisSummary "Summary"
// @Router      /analysis/previous [post]
func (h *AnalysisHandler) PreviousPeriod(c *gin.Context) {
	h.analysis.PreviousPeriod()
	h.respond(c)
}

func (h *AnalysisHandler) respond(c *gin.Context) {
	h.analysis.Flush()
	c.JSON(http.StatusOK, gin.H{
		"analysis": h.analysis.Current(),
		"state":    h.analysis.State(),
	})
}
