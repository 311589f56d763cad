package domain

import "testing"

func TestSummarizeRouteUsesFirstLegOfFirstRoute(t *testing.T) {
	resp := RouteResponse{
		Routes: []Route{
			{Legs: []RouteLeg{
				{Duration: TextValue{Text: "12 mins", Value: 720}, Distance: TextValue{Text: "8.4 km", Value: 8400}},
				{Duration: TextValue{Text: "3 mins", Value: 180}, Distance: TextValue{Text: "1.0 km", Value: 1000}},
			}},
			{Legs: []RouteLeg{
				{Duration: TextValue{Text: "20 mins", Value: 1200}, Distance: TextValue{Text: "9.9 km", Value: 9900}},
			}},
		},
	}

	summary, ok := SummarizeRoute(resp)
	if !ok {
		t.Fatalf("expected summary")
	}
	if summary.DurationText != "12 mins" {
		t.Fatalf("duration = %q, want %q", summary.DurationText, "12 mins")
	}
	if summary.DistanceText != "8.4 km" {
		t.Fatalf("distance = %q, want %q", summary.DistanceText, "8.4 km")
	}
	if len(summary.Raw.Routes) != 2 {
		t.Fatalf("raw routes = %d, want 2", len(summary.Raw.Routes))
	}
}

func TestSummarizeRouteRejectsEmptyResponses(t *testing.T) {
	cases := map[string]RouteResponse{
		"no routes": {},
		"no legs":   {Routes: []Route{{}}},
	}
	for name, resp := range cases {
		if _, ok := SummarizeRoute(resp); ok {
			t.Errorf("%s: expected no summary", name)
		}
	}
}
