package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

// Accepted spellings. Four-digit year layouts only; two-digit years are
// ambiguous in curator sheets.
var (
	dateLayouts = []string{
		constants.DateFormat, "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "Jan 2, 2006", "2 Jan 2006", "20060102",
		time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
	}
	datetimeLayouts = []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
		"2006-01-02T15:04", "2006-01-02 15:04", constants.DateFormat,
	}
	timeLayouts = []string{
		constants.TimeOfDayFormat, "15:04", "3:04 PM", "3:04PM", "3:04:05 PM",
		time.RFC3339Nano, time.RFC3339,
	}
)

// Canonical returns the comparison form of raw under kind. Blank input
// yields "" with no error.
func Canonical(kind graph.Kind, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	switch kind {
	case graph.KindText, graph.KindDescription, graph.KindRelation:
		return s, nil
	case graph.KindBoolean:
		b, err := ParseBool(s)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case graph.KindInteger:
		n, err := ParseInteger(s)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case graph.KindFloat:
		f, err := ParseFloat(s)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case graph.KindDate:
		t, err := parseTime(kind, s, dateLayouts)
		if err != nil {
			return "", err
		}
		return t.Format(constants.DateFormat), nil
	case graph.KindDatetime:
		t, err := parseTime(kind, s, datetimeLayouts)
		if err != nil {
			return "", err
		}
		return t.UTC().Format(time.RFC3339), nil
	case graph.KindTime:
		t, err := parseTime(kind, s, timeLayouts)
		if err != nil {
			return "", err
		}
		return t.Format(constants.TimeOfDayFormat), nil
	case graph.KindPoint:
		lat, lon, err := ParsePoint(s)
		if err != nil {
			return "", err
		}
		return formatPoint(lat, lon), nil
	default:
		return "", errors.NewValidationError("kind", kind, "unknown property kind")
	}
}

// Equal reports whether declared and live hold the same value under kind.
// Floats compare within constants.FloatEpsilon; every other kind compares
// canonical forms.
func Equal(kind graph.Kind, declared, live string) (bool, error) {
	if kind == graph.KindFloat && !IsBlank(declared) && !IsBlank(live) {
		a, err := ParseFloat(declared)
		if err != nil {
			return false, err
		}
		b, err := ParseFloat(live)
		if err != nil {
			return false, err
		}
		return math.Abs(a-b) <= constants.FloatEpsilon, nil
	}
	a, err := Canonical(kind, declared)
	if err != nil {
		return false, err
	}
	b, err := Canonical(kind, live)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

// Encode converts a declared cell into the typed value the store holds.
func Encode(kind graph.Kind, raw string) (graph.Value, error) {
	canonical, err := Canonical(kind, raw)
	if err != nil {
		return graph.Value{}, err
	}
	v := graph.Value{Type: kind.DataType(), Value: canonical}
	switch kind {
	case graph.KindBoolean:
		if canonical == "true" {
			v.Value = "1"
		} else {
			v.Value = "0"
		}
	case graph.KindDate:
		v.Value = canonical + "T00:00:00Z"
	case graph.KindRelation:
		return graph.Value{}, errors.NewValidationError("kind", kind, "relation cells have no scalar value")
	}
	return v, nil
}

// Validate reports whether raw is acceptable for kind.
func Validate(kind graph.Kind, raw string) error {
	if kind == graph.KindRelation {
		return nil
	}
	_, err := Canonical(kind, raw)
	return err
}

// ParseBool accepts true/t/yes/y/1 and false/f/no/n/0 in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "checked":
		return true, nil
	case "false", "f", "no", "n", "0", "unchecked":
		return false, nil
	default:
		return false, errors.NewValidationError(string(graph.KindBoolean), s, "not a boolean")
	}
}

// ParseInteger parses a whole number, tolerating thousands separators and
// a zero fractional part ("3.0").
func ParseInteger(s string) (int64, error) {
	s = cleanNumber(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, errors.NewValidationError(string(graph.KindInteger), s, "not an integer")
	}
	return int64(f), nil
}

// ParseFloat parses a decimal number, tolerating thousands separators.
func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.NewValidationError(string(graph.KindFloat), s, "not a number")
	}
	return f, nil
}

// ParsePoint parses "lat,lon", optionally wrapped in brackets or parentheses.
func ParsePoint(s string) (lat, lon float64, err error) {
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.NewValidationError(string(graph.KindPoint), s, "expected lat,lon")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.NewValidationError(string(graph.KindPoint), s, "invalid latitude")
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.NewValidationError(string(graph.KindPoint), s, "invalid longitude")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.NewValidationError(string(graph.KindPoint), s, "coordinates out of range")
	}
	return lat, lon, nil
}

func formatPoint(lat, lon float64) string {
	return fmt.Sprintf("%s,%s", strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func parseTime(kind graph.Kind, s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(string(kind), s, "unrecognized "+string(kind)+" format")
}
