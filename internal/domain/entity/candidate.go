package entity

// Candidate is a geocoding search result. Coordinates are kept as the
// geocoder reported them and parsed only when the candidate is selected.
type Candidate struct {
	PlaceID     string `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`

	// DistanceMeters is the distance from the viewport center when the
	// candidate was delivered. Zero when unknown.
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}
