package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

// DocumentHandler exposes document store endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs handler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload godoc
// @Summary Upload a document against a property
// @Tags Documents
// @Accept mpfd
// @Produce json
// @Param id path string true "Property id"
// @Param file formData file true "Document file"
// @Param document_type formData string true "Document type"
// @Param description formData string false "Description"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /properties/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file part is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	document, err := h.documents.Upload(c.Request.Context(), c.Param("id"), req, service.DocumentUpload{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  content,
	}, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, document)
}

// List godoc
// @Summary List documents attached to a property
// @Tags Documents
// @Produce json
// @Param id path string true "Property id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /properties/{id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	documents, err := h.documents.ListByProperty(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents, nil)
}

// Grant godoc
// @Summary Issue a signed download link for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/{id}/grant [post]
func (h *DocumentHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grant, err := h.documents.DownloadGrant(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}

// Download godoc
// @Summary Download a document via signed token
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Document id"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token query parameter is required"))
		return
	}
	document, file, err := h.documents.Resolve(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+document.FileName+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
