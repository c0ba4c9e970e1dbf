package dto

import "github.com/bhoomi-portal/land-registry-api/internal/models"

// UploadDocumentRequest carries document upload metadata (file bytes travel
// as a multipart part alongside it).
type UploadDocumentRequest struct {
	Type        models.DocumentType `form:"document_type" json:"document_type"`
	Description string              `form:"description" json:"description"`
}
