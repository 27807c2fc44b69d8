package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DelphiTri/website/internal/constants"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// ParseTimestamp accepts RFC 3339 or the admin form layout "2006-01-02 15:04:05",
// the latter read as UTC. Blank input yields nil.
func ParseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(constants.TimestampLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return &t, nil
}

// FormatTimestamp renders t in the admin form layout, or "" for nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(constants.TimestampLayout)
}
