package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

// ReportHandler exposes administration reporting endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary godoc
// @Summary Registry-wide summary counts
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportMutations godoc
// @Summary Export the mutation register as CSV
// @Tags Reports
// @Produce text/csv
// @Param status query string false "Comma separated statuses"
// @Param property_id query string false "Filter by property"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/mutations/export [get]
func (h *ReportHandler) ExportMutations(c *gin.Context) {
	query := dto.MutationQuery{
		Status:     parseStatuses(c.Query("status")),
		PropertyID: c.Query("property_id"),
		PageSize:   parseIntQuery(c, "limit", 1000),
	}
	data, filename, err := h.reports.ExportMutationsCSV(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
