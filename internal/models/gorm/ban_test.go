package gorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBan_IsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		ban  Ban
		want bool
	}{
		{"indefinite started", Ban{StartTimestamp: past}, true},
		{"starts exactly now", Ban{StartTimestamp: now}, true},
		{"not started", Ban{StartTimestamp: future}, false},
		{"ends in future", Ban{StartTimestamp: past, EndTimestamp: &future}, true},
		{"ends exactly now", Ban{StartTimestamp: past, EndTimestamp: &now}, false},
		{"expired", Ban{StartTimestamp: past.Add(-time.Hour), EndTimestamp: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ban.IsActive(now))
		})
	}
}
