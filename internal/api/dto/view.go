package dto

type SelectionRequest struct {
	FormattedAddress string  `json:"formatted_address" validate:"required,max=500"`
	Lat              float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng              float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type ActiveHomeRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// Name may be empty: an unnamed landmark keeps the placeholder name.
type RenameLandmarkRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type HomeResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type LandmarkResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	DurationText string  `json:"duration_text,omitempty"`
	DistanceText string  `json:"distance_text,omitempty"`
	HasRoute     bool    `json:"has_route"`
}

type PendingResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type ViewResponse struct {
	Homes         []HomeResponse     `json:"homes"`
	ActiveHome    string             `json:"active_home"`
	Landmarks     []LandmarkResponse `json:"landmarks"`
	Pending       *PendingResponse   `json:"pending,omitempty"`
	HomesDisabled bool               `json:"homes_disabled"`
	CanCommit     bool               `json:"can_commit"`
	ClearInput    bool               `json:"clear_input"`
	LastError     string             `json:"last_error,omitempty"`
}

type RemoveLandmarksResponse struct {
	Removed int `json:"removed"`
}
