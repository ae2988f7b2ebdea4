package schema

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// AttributeType is the declared type of a dynamic attribute
type AttributeType string

const (
	AttrText    AttributeType = "text"
	AttrNumber  AttributeType = "number"
	AttrBoolean AttributeType = "boolean"
	AttrDate    AttributeType = "date"
	AttrSelect  AttributeType = "select"
)

// Valid reports whether t is one of the known attribute types.
func (t AttributeType) Valid() bool {
	switch t {
	case AttrText, AttrNumber, AttrBoolean, AttrDate, AttrSelect:
		return true
	default:
		return false
	}
}

// DateLayout is the canonical stored form of date attribute values.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// Attribute is a named, typed, dynamically defined field
type Attribute struct {
	ID      int64         `json:"id"`
	Name    string        `json:"name"`
	Type    AttributeType `json:"type"`
	Options []string      `json:"options,omitempty"`
}

// AttributeValue is one job's value for one attribute, stored as text
type AttributeValue struct {
	JobID       int64
	AttributeID int64
	Value       string
}

// AttributeLookup resolves attribute definitions by name.
// A missing attribute is reported with ok=false and a nil error.
type AttributeLookup interface {
	FindByName(ctx context.Context, name string) (attr Attribute, ok bool, err error)
}

// TypedValue interprets a stored raw value according to the attribute type.
func (a Attribute) TypedValue(raw string) any {
	switch a.Type {
	case AttrNumber:
		f, ok := ParseNumber(raw)
		if !ok {
			return nil
		}
		return f
	case AttrBoolean:
		return Truthy(raw)
	case AttrDate:
		d, ok := ParseDate(raw)
		if !ok {
			return nil
		}
		return d
	default:
		return raw
	}
}

// NormalizeValue canonicalises a raw value before it is stored, so that
// filter comparisons see one spelling per value.
func (a Attribute) NormalizeValue(raw string) string {
	raw = strings.TrimSpace(raw)
	switch a.Type {
	case AttrNumber:
		if f, ok := ParseNumber(raw); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case AttrBoolean:
		return CanonicalBool(raw)
	case AttrDate:
		if d, ok := ParseDate(raw); ok {
			return d
		}
	}
	return raw
}

// HasOption reports whether v is one of a select attribute's options.
func (a Attribute) HasOption(v string) bool {
	for _, o := range a.Options {
		if o == v {
			return true
		}
	}
	return false
}

// ParseNumber parses a numeric literal.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate parses a date or timestamp and returns it as YYYY-MM-DD.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// Truthy is the permissive boolean reading: 1, true, yes and on are true.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// ParseBoolLiteral accepts the strict filter spelling of a boolean, true,
// false, 1 or 0 in any case, and returns it as "true" or "false".
func ParseBoolLiteral(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return "true", true
	case "false", "0":
		return "false", true
	}
	return "", false
}

// CanonicalBool renders a boolean-ish value as "true" or "false".
func CanonicalBool(s string) string {
	if Truthy(s) {
		return "true"
	}
	return "false"
}
