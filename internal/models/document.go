package models

import "time"

// DocumentType enumerates recognised land-record document categories.
type DocumentType string

const (
	DocumentTypeSaleDeed               DocumentType = "sale_deed"
	DocumentTypePropertyTax            DocumentType = "property_tax"
	DocumentTypeSurveyMap              DocumentType = "survey_map"
	DocumentTypeMutationCertificate    DocumentType = "mutation_certificate"
	DocumentTypeEStamp                 DocumentType = "e_stamp"
	DocumentTypeRegistry               DocumentType = "registry"
	DocumentTypeKhatauni               DocumentType = "khatauni"
	DocumentTypeJamabandi              DocumentType = "jamabandi"
	DocumentTypeNOC                    DocumentType = "noc"
	DocumentTypeEncumbranceCertificate DocumentType = "encumbrance_certificate"
	DocumentTypeOther                  DocumentType = "other"
)

// ValidDocumentType reports whether the given type is a recognised category.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypeSaleDeed, DocumentTypePropertyTax, DocumentTypeSurveyMap,
		DocumentTypeMutationCertificate, DocumentTypeEStamp, DocumentTypeRegistry,
		DocumentTypeKhatauni, DocumentTypeJamabandi, DocumentTypeNOC,
		DocumentTypeEncumbranceCertificate, DocumentTypeOther:
		return true
	}
	return false
}

// Document is an uploaded file tied to a property. The content hash is
// computed once at upload time and never changes.
type Document struct {
	ID          string       `db:"id" json:"id"`
	PropertyID  string       `db:"property_id" json:"property_id"`
	Type        DocumentType `db:"type" json:"type"`
	FileName    string       `db:"file_name" json:"file_name"`
	FilePath    string       `db:"file_path" json:"-"`
	ContentHash string       `db:"content_hash" json:"content_hash"`
	SizeBytes   int64        `db:"size_bytes" json:"size_bytes"`
	Description *string      `db:"description" json:"description,omitempty"`
	UploadedBy  string       `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt  time.Time    `db:"uploaded_at" json:"uploaded_at"`
}
