// internal/picks/dto.go
package picks

// DTOs for API requests/responses

type CreatePickRequestDTO struct {
	ActivityType    string  `json:"activity_type" validate:"required,oneof=coffee walk food gaming study movie gym other"`
	Subject         string  `json:"subject" validate:"required,min=3,max=200"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0,max=480"`
	Latitude        float64 `json:"latitude" validate:"latitude"`
	Longitude       float64 `json:"longitude" validate:"longitude"`
}

type NearbyQuery struct {
	Latitude     float64 `json:"latitude" validate:"latitude"`
	Longitude    float64 `json:"longitude" validate:"longitude"`
	RadiusMeters float64 `json:"radius_meters" validate:"gt=0"`
}
