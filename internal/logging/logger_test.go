package logging

import (
	"testing"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"INFO", bolt.INFO},
		{"warning", bolt.WARN},
		{"error", bolt.ERROR},
		{"", bolt.INFO},
		{"nonsense", bolt.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestGetInitializesDefault(t *testing.T) {
	assert.NotNil(t, Get())
}
