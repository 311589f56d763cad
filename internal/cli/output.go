package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents command output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates format values.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", v)
	}
}

// render writes payload as json/yaml, or as a table built from headers
// and rows.
func render(w io.Writer, format Format, payload any, headers []string, rows [][]string) error {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = fmt.Fprint(w, string(b))
		return err
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, row := range rows {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}
}

type homeRow struct {
	Address string  `json:"address" yaml:"address"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Active  bool    `json:"active,omitempty" yaml:"active,omitempty"`
}

type landmarkRow struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Lat      float64 `json:"lat" yaml:"lat"`
	Lng      float64 `json:"lng" yaml:"lng"`
	Duration string  `json:"duration,omitempty" yaml:"duration,omitempty"`
	Distance string  `json:"distance,omitempty" yaml:"distance,omitempty"`
}

type routesPayload struct {
	Home      string        `json:"home" yaml:"home"`
	Landmarks []landmarkRow `json:"landmarks" yaml:"landmarks"`
}

func coord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
