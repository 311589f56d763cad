package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Represents a saved reference point the user wants driving time to.
// Name is the display label and is used as the removal key; ID is a
// stable identifier assigned on creation and used for edits and merges,
// so positional shifts between a read and a write cannot hit the wrong entry.
type Landmark struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Point GeoPoint      `json:"location"`
	Route *RouteSummary `json:"route,omitempty"`
}

// landmarkWire accepts the current shape and the flat
// {lat, lng, name, directions} shape earlier clients stored under the
// same key. Unknown fields are rejected in both.
type landmarkWire struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Location   *GeoPoint       `json:"location"`
	Route      *RouteSummary   `json:"route"`
	Lat        *float64        `json:"lat"`
	Lng        *float64        `json:"lng"`
	Directions json.RawMessage `json:"directions"`
}

func (l *Landmark) UnmarshalJSON(data []byte) error {
	var w landmarkWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return err
	}

	out := Landmark{ID: w.ID, Name: w.Name, Route: w.Route}
	switch {
	case w.Location != nil:
		if w.Lat != nil || w.Lng != nil || len(w.Directions) > 0 {
			return errors.New("landmark: location mixed with flat coordinates")
		}
		out.Point = *w.Location
	case w.Lat != nil && w.Lng != nil:
		out.Point = GeoPoint{Lat: *w.Lat, Lng: *w.Lng}
		if out.Route == nil {
			out.Route = flatDirections(w.Directions)
		}
	default:
		return errors.New("landmark: missing location")
	}

	*l = out
	return nil
}

// flatDirections keeps the first leg of a stored provider answer. The
// answer is advisory; anything unusable means the route is recomputed.
func flatDirections(raw json.RawMessage) *RouteSummary {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var resp RouteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	summary, ok := SummarizeRoute(resp)
	if !ok {
		return nil
	}
	return summary
}

func NewLandmark(name string, point GeoPoint) Landmark {
	return Landmark{
		ID:    uuid.NewString(),
		Name:  name,
		Point: point,
	}
}

// EnsureID assigns an identifier to landmarks persisted before IDs existed.
func (l *Landmark) EnsureID() bool {
	if strings.TrimSpace(l.ID) != "" {
		return false
	}
	l.ID = uuid.NewString()
	return true
}

// WithRoute returns a copy of the landmark annotated with route.
func (l Landmark) WithRoute(route *RouteSummary) Landmark {
	l.Route = route
	return l
}

// CloneLandmarks copies the slice so callers cannot alias registry state.
func CloneLandmarks(in []Landmark) []Landmark {
	if in == nil {
		return []Landmark{}
	}
	out := make([]Landmark, len(in))
	copy(out, in)
	return out
}
