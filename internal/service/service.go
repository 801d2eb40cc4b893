// Package service implements the LiFocus business operations on top of the
// store interfaces. Services return coded errors from internal/errors; the API
// layer maps them to HTTP responses.
package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
	"github.com/lifocus/lifocus-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// storeError converts store sentinels into domain errors, keeping the store's
// message. Other errors are returned unchanged.
func storeError(err error) error {
	var se *store.Error
	if !errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(se.Message)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(se.Message)
	default:
		return err
	}
}

// ParseIDList parses a comma-separated list of ids such as "5,6".
// Blank entries are ignored and order is preserved.
func ParseIDList(csv string) ([]int64, error) {
	var ids []int64
	for part := range strings.SplitSeq(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil || v <= 0 {
			return nil, domainerrors.Validationf("invalid id %q", part)
		}
		ids = append(ids, v)
	}
	return ids, nil
}

// ParseCSV splits a comma-separated list, dropping blank entries.
func ParseCSV(csv string) []string {
	var out []string
	for part := range strings.SplitSeq(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// PageRequest is a paginated query with free-form conditions. Only
// allow-listed condition keys are honoured; others are ignored.
type PageRequest struct {
	PageNo     int            `json:"page_no"`
	PageSize   int            `json:"page_size"`
	Conditions map[string]any `json:"query"`
}

// conditionString reads a condition as a string.
func conditionString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// conditionBool reads a condition as a flag. Accepts JSON booleans, 0/1 and
// the strings "true"/"false"/"1"/"0".
func conditionBool(key string, v any) (*bool, error) {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case float64:
		b = t != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil, domainerrors.Validationf("%s must be a boolean", key)
		}
		b = parsed
	default:
		return nil, domainerrors.Validationf("%s must be a boolean", key)
	}
	return &b, nil
}

// conditionTimeLayouts are accepted for time conditions, in order.
var conditionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// conditionTime reads a condition as a point in time: an RFC 3339 or
// "YYYY-MM-DD[ HH:MM:SS]" string (UTC), or unix milliseconds.
func conditionTime(key string, v any) (*time.Time, error) {
	switch t := v.(type) {
	case float64:
		ts := time.UnixMilli(int64(t)).UTC()
		return &ts, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range conditionTimeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return &ts, nil
			}
		}
	}
	return nil, domainerrors.Validationf("%s must be a timestamp", key)
}
