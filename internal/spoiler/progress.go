package spoiler

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseProgress reads the watch progress out of the list metadata attribute.
// An empty attribute, a non-object document or a missing progress member means nothing
// was watched. Numeric strings count as numbers; fractions round down.
func ParseProgress(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var doc jsontext.Value
	if err := json.Unmarshal([]byte(raw), &doc, jsontext.AllowDuplicateNames(true)); err != nil {
		return 0, fmt.Errorf("decode list data: %w", err)
	}
	if doc.Kind() != '{' {
		return 0, nil
	}

	var data struct {
		Progress jsontext.Value `json:"progress"`
	}
	if err := json.Unmarshal(doc, &data, jsontext.AllowDuplicateNames(true)); err != nil {
		return 0, fmt.Errorf("decode list data: %w", err)
	}

	var f float64
	switch data.Progress.Kind() {
	case 0, 'n', 'f':
		return 0, nil
	case 't':
		return 1, nil
	case '0':
		if err := json.Unmarshal(data.Progress, &f); err != nil {
			return 0, fmt.Errorf("parse progress %s: %w", data.Progress, err)
		}
	case '"':
		var str string
		if err := json.Unmarshal(data.Progress, &str); err != nil {
			return 0, fmt.Errorf("parse progress %s: %w", data.Progress, err)
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, fmt.Errorf("parse progress %q: %w", str, err)
		}
		f = v
	default:
		return 0, fmt.Errorf("progress is a JSON %s, not a number", data.Progress.Kind())
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("progress %v out of range", f)
	}
	return int(math.Floor(f)), nil
}

// ParseEpisodeNumber reads a data-episode-number attribute.
func ParseEpisodeNumber(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
