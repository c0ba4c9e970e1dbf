package models

import "time"

// Property is a registered land parcel. Identity fields are immutable after
// registration; the owner reference changes only through an approved mutation.
type Property struct {
	ID           string    `db:"id" json:"id"`
	SurveyNumber string    `db:"survey_number" json:"survey_number"`
	Address      string    `db:"address" json:"address"`
	AreaSqFt     float64   `db:"area_sqft" json:"area_sqft"`
	GeoLatitude  *float64  `db:"geo_latitude" json:"geo_latitude,omitempty"`
	GeoLongitude *float64  `db:"geo_longitude" json:"geo_longitude,omitempty"`
	OwnerID      string    `db:"owner_id" json:"owner_id"`
	TitleHash    *string   `db:"title_hash" json:"title_hash,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PropertyFilter constrains listing queries.
type PropertyFilter struct {
	OwnerID string
	Limit   int
	Offset  int
}
