package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhoomi-portal/land-registry-api/internal/service"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

// VerificationHandler exposes the public lookup endpoints. No authentication
// is required; responses carry no personal contact details.
type VerificationHandler struct {
	verification *service.VerificationService
}

// NewVerificationHandler constructs handler.
func NewVerificationHandler(verification *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// Property godoc
// @Summary Verify a property by survey number
// @Tags Verification
// @Produce json
// @Param survey_number query string true "Survey number (may contain slashes)"
// @Success 200 {object} response.Envelope
// @Router /verify/property [get]
func (h *VerificationHandler) Property(c *gin.Context) {
	// Survey numbers carry slashes ("123/456"), so the value travels as a
	// query parameter rather than a path segment.
	result, err := h.verification.VerifyProperty(c.Request.Context(), c.Query("survey_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Document godoc
// @Summary Verify a document by content hash
// @Tags Verification
// @Produce json
// @Param hash path string true "SHA-256 content hash"
// @Success 200 {object} response.Envelope
// @Router /verify/document/{hash} [get]
func (h *VerificationHandler) Document(c *gin.Context) {
	result, err := h.verification.VerifyDocument(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Mutation godoc
// @Summary Verify a mutation by transaction id
// @Tags Verification
// @Produce json
// @Param transactionId path string true "Transaction id (MUT-NNNNN)"
// @Success 200 {object} response.Envelope
// @Router /verify/mutation/{transactionId} [get]
func (h *VerificationHandler) Mutation(c *gin.Context) {
	result, err := h.verification.VerifyMutation(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
