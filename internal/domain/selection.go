package domain

import (
	"errors"
	"strings"
)

// PlaceSelection is the event a place-selection source (an address
// autocomplete widget, a geocoder) emits when the user picks a place.
type PlaceSelection struct {
	FormattedAddress string   `json:"formatted_address"`
	Point            GeoPoint `json:"location"`
}

func (p PlaceSelection) Validate() error {
	if strings.TrimSpace(p.FormattedAddress) == "" {
		return errors.New("place selection: formatted address must be non-empty")
	}
	return p.Point.Validate()
}

// PendingSelection holds a selected place until the user commits it as a
// home or a landmark. It is transient and never persisted.
type PendingSelection struct {
	Address string   `json:"address"`
	Point   GeoPoint `json:"location"`
}

func (p PendingSelection) AsHome() Home {
	return Home{Address: p.Address, Point: p.Point}
}

func (p PendingSelection) AsLandmark(name string) Landmark {
	return NewLandmark(name, p.Point)
}
