// Package timecode parses the wall-clock media offsets carried in clip job
// specs. Offsets are "mm:ss" or "hh:mm:ss" strings; fractional seconds are
// accepted in the final component.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts an offset string into seconds.
func Parse(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("offset is empty")
	}
	parts := strings.Split(trimmed, ":")
	switch len(parts) {
	case 2:
		minutes, err := parseComponent(parts[0], "minutes")
		if err != nil {
			return 0, err
		}
		seconds, err := parseSeconds(parts[1])
		if err != nil {
			return 0, err
		}
		return float64(minutes)*60 + seconds, nil
	case 3:
		hours, err := parseComponent(parts[0], "hours")
		if err != nil {
			return 0, err
		}
		minutes, err := parseComponent(parts[1], "minutes")
		if err != nil {
			return 0, err
		}
		seconds, err := parseSeconds(parts[2])
		if err != nil {
			return 0, err
		}
		return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
	default:
		return 0, fmt.Errorf("invalid offset format %q (want mm:ss or hh:mm:ss)", value)
	}
}

// ValidateRange parses both offsets and ensures the half-open interval
// [start, end) is non-empty.
func ValidateRange(start, end string) (startSeconds, endSeconds float64, err error) {
	startSeconds, err = Parse(start)
	if err != nil {
		return 0, 0, fmt.Errorf("start offset: %w", err)
	}
	endSeconds, err = Parse(end)
	if err != nil {
		return 0, 0, fmt.Errorf("end offset: %w", err)
	}
	if endSeconds <= startSeconds {
		return 0, 0, fmt.Errorf("end offset %q must be after start offset %q", end, start)
	}
	return startSeconds, endSeconds, nil
}

func parseComponent(raw, label string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s component %q", label, raw)
	}
	return value, nil
}

func parseSeconds(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 || value >= 60 {
		return 0, fmt.Errorf("invalid seconds component %q", raw)
	}
	return value, nil
}
