package domain

// Represents a candidate address the user is considering.
// Address is the key used for selection and for the active-home reference.
// Homes are never mutated once created.
type Home struct {
	Address string   `json:"address"`
	Point   GeoPoint `json:"location"`
}

func CloneHomes(in []Home) []Home {
	if in == nil {
		return []Home{}
	}
	out := make([]Home, len(in))
	copy(out, in)
	return out
}
