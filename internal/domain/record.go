package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Record is the flat, JSON-compatible field map an entity is persisted as.
// Values are scalars or nil; after a store round-trip numbers come back as
// float64 and timestamps as RFC 3339 strings.
type Record map[string]interface{}

// Predicate filters raw records client-side during a full category scan.
type Predicate func(Record) bool

// TimeLayout is the on-store representation of every timestamp.
const TimeLayout = time.RFC3339Nano

func (r Record) GetString(field string) string {
	return cast.ToString(r[field])
}

// GetOptionalString maps nil, missing and empty values to "".
func (r Record) GetOptionalString(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

func (r Record) GetInt(field string) (int, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, fmt.Errorf("field %q missing", field)
	}
	return cast.ToIntE(v)
}

// GetInt64 treats a missing field as zero.
func (r Record) GetInt64(field string) (int64, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, nil
	}
	return cast.ToInt64E(v)
}

func (r Record) GetDecimal(field string) (decimal.Decimal, error) {
	s, err := cast.ToStringE(r[field])
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q: %w", field, err)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q: %w", field, err)
	}
	return d, nil
}

func (r Record) GetTime(field string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, r.GetString(field))
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q: %w", field, err)
	}
	return t, nil
}

func (r Record) GetOptionalTime(field string) (*time.Time, error) {
	s := r.GetOptionalString(field)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func optionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func optionalString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
