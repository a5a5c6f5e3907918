package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestNotification_IsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		n    Notification
		want bool
	}{
		{"no expiry never expires", Notification{}, false},
		{"future expiry", Notification{ExpiresAt: null.TimeFrom(now.Add(time.Hour))}, false},
		{"exact expiry is still live", Notification{ExpiresAt: null.TimeFrom(now)}, false},
		{"past expiry", Notification{ExpiresAt: null.TimeFrom(now.Add(-time.Minute))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.n.IsExpired(now))
		})
	}
}
