package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

// MutationHandler exposes the ownership-transfer workflow endpoints.
type MutationHandler struct {
	mutations    *service.MutationService
	certificates *service.CertificateService
}

// NewMutationHandler constructs handler.
func NewMutationHandler(mutations *service.MutationService, certificates *service.CertificateService) *MutationHandler {
	return &MutationHandler{mutations: mutations, certificates: certificates}
}

// Create godoc
// @Summary Request an ownership transfer
// @Tags Mutations
// @Accept json
// @Produce json
// @Param payload body dto.CreateMutationRequest true "Mutation payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /mutations [post]
func (h *MutationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mutation, err := h.mutations.Request(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mutation)
}

// List godoc
// @Summary List mutations
// @Tags Mutations
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param property_id query string false "Filter by property"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /mutations [get]
func (h *MutationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.MutationQuery{
		Status:     parseStatuses(c.Query("status")),
		PropertyID: c.Query("property_id"),
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "page_size", 50),
	}
	mutations, pagination, err := h.mutations.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutations, &pagination)
}

// Get godoc
// @Summary Fetch a mutation by id
// @Tags Mutations
// @Produce json
// @Param id path string true "Mutation id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /mutations/{id} [get]
func (h *MutationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	mutation, err := h.mutations.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutation, nil)
}

// Approve godoc
// @Summary Approve a pending mutation
// @Tags Mutations
// @Accept json
// @Produce json
// @Param id path string true "Mutation id"
// @Param payload body dto.ApproveMutationRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /mutations/{id}/approve [post]
func (h *MutationHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ApproveMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mutation, err := h.mutations.Approve(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutation, nil)
}

// Reject godoc
// @Summary Reject a pending mutation
// @Tags Mutations
// @Accept json
// @Produce json
// @Param id path string true "Mutation id"
// @Param payload body dto.RejectMutationRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /mutations/{id}/reject [post]
func (h *MutationHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RejectMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mutation, err := h.mutations.Reject(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutation, nil)
}

// Cancel godoc
// @Summary Withdraw a pending mutation
// @Tags Mutations
// @Param id path string true "Mutation id"
// @Success 204
// @Security BearerAuth
// @Router /mutations/{id} [delete]
func (h *MutationHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.mutations.Cancel(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Certificate godoc
// @Summary Download the mutation certificate
// @Tags Mutations
// @Produce application/pdf
// @Param id path string true "Mutation id"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /mutations/{id}/certificate [get]
func (h *MutationHandler) Certificate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	download, err := h.certificates.Download(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, download.File)
}

func parseStatuses(raw string) []models.MutationStatus {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]models.MutationStatus, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		statuses = append(statuses, models.MutationStatus(part))
	}
	return statuses
}
