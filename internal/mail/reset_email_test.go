package mail

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildResetEmail(t *testing.T) {
	resetURL := "http://127.0.0.1:5177/reset-password?token=abc123"
	msg := BuildResetEmail(resetURL, 30*time.Minute)

	assert.Equal(t, "SHELL-NOTE password reset", msg.Subject)
	assert.Contains(t, msg.Text, resetURL)
	assert.Contains(t, msg.Text, "30 minutes")
	assert.Contains(t, msg.HTML, resetURL)
	assert.Contains(t, msg.HTML, "30 minutes")
	assert.True(t, strings.HasPrefix(msg.HTML, "<!doctype html>"))
}

func TestFormatTTL(t *testing.T) {
	tests := []struct {
		ttl      time.Duration
		expected string
	}{
		{30 * time.Minute, "30 minutes"},
		{time.Hour, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Minute, "90 minutes"},
		{0, "a few minutes"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatTTL(tt.ttl))
	}
}
