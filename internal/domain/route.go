package domain

// TravelMode selects the routing profile requested from the provider.
type TravelMode string

// Driving is the only mode the aggregator requests.
const TravelModeDriving TravelMode = "DRIVING"

// TextValue pairs a human-readable label with its raw magnitude
// (seconds for durations, meters for distances).
type TextValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// RouteLeg is one origin->waypoint segment of a route.
type RouteLeg struct {
	Duration TextValue `json:"duration"`
	Distance TextValue `json:"distance"`
}

// Route is a single alternative returned by the routing provider.
type Route struct {
	Legs []RouteLeg `json:"legs"`
}

// RouteResponse is the provider payload for one origin/destination pair.
// It may carry zero routes when the destination is unreachable.
type RouteResponse struct {
	Routes []Route `json:"routes"`
}

// FirstLeg returns routes[0].legs[0], the only part the engine consumes.
func (r RouteResponse) FirstLeg() (RouteLeg, bool) {
	if len(r.Routes) == 0 || len(r.Routes[0].Legs) == 0 {
		return RouteLeg{}, false
	}
	return r.Routes[0].Legs[0], true
}

// Represents the driving summary from the active home to one landmark.
// A RouteSummary is derived data: it is recomputed whenever the active
// home or the landmark set changes and is never edited in place.
type RouteSummary struct {
	DurationText string        `json:"durationText"`
	DistanceText string        `json:"distanceText"`
	Raw          RouteResponse `json:"raw"`
}

// SummarizeRoute extracts the first leg of the first route.
// It reports false when the response holds no usable leg.
func SummarizeRoute(resp RouteResponse) (*RouteSummary, bool) {
	leg, ok := resp.FirstLeg()
	if !ok {
		return nil, false
	}
	return &RouteSummary{
		DurationText: leg.Duration.Text,
		DistanceText: leg.Distance.Text,
		Raw:          resp,
	}, true
}
