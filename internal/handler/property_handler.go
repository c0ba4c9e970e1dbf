package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

// PropertyHandler exposes property registry endpoints.
type PropertyHandler struct {
	properties *service.PropertyService
}

// NewPropertyHandler constructs handler.
func NewPropertyHandler(properties *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

// Create godoc
// @Summary Register a land parcel
// @Tags Properties
// @Accept json
// @Produce json
// @Param payload body dto.CreatePropertyRequest true "Property payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	property, err := h.properties.Register(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, property)
}

// Get godoc
// @Summary Fetch a property by id
// @Tags Properties
// @Produce json
// @Param id path string true "Property id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	property, err := h.properties.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, property, nil)
}

// List godoc
// @Summary List properties
// @Tags Properties
// @Produce json
// @Param owner_id query string false "Filter by owner (admin only)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.PropertyQuery{
		OwnerID:  c.Query("owner_id"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 50),
	}
	properties, pagination, err := h.properties.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, properties, &pagination)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
