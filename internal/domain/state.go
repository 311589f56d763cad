package domain

// PersistedState is the only durable entity: the ordered landmark and
// home collections.
type PersistedState struct {
	Landmarks []Landmark `json:"landmarks"`
	Homes     []Home     `json:"homes"`
}

// EmptyState returns a state with non-nil, empty collections so it
// serializes as [] rather than null.
func EmptyState() PersistedState {
	return PersistedState{
		Landmarks: []Landmark{},
		Homes:     []Home{},
	}
}
