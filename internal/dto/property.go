package dto

// CreatePropertyRequest payload for registering a new land parcel.
type CreatePropertyRequest struct {
	SurveyNumber string   `json:"survey_number" validate:"required"`
	Address      string   `json:"address" validate:"required"`
	AreaSqFt     float64  `json:"area_sqft" validate:"required,gt=0"`
	GeoLatitude  *float64 `json:"geo_latitude" validate:"omitempty,gte=-90,lte=90"`
	GeoLongitude *float64 `json:"geo_longitude" validate:"omitempty,gte=-180,lte=180"`
}

// PropertyQuery mirrors supported listing filters.
type PropertyQuery struct {
	OwnerID  string
	Page     int
	PageSize int
}
