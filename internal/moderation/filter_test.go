package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	f := NewFilter()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain question", in: "  Why are my basil leaves yellow? ", want: "Why are my basil leaves yellow?"},
		{name: "empty", in: "   ", wantErr: ErrEmpty},
		{name: "banned word", in: "this SHIT plant keeps dying", wantErr: ErrBlocked},
		{name: "substring is fine", in: "my grasshopper problem, and the cockpit of my greenhouse", want: "my grasshopper problem, and the cockpit of my greenhouse"},
		{name: "too long", in: strings.Repeat("a", MaxMessageRunes+1), wantErr: ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Check(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedact(t *testing.T) {
	f := NewFilter()
	got := f.Redact("mail me at jane.doe@example.com or call 555-123-4567, pics at https://imgur.com/x")
	assert.NotContains(t, got, "jane.doe@example.com")
	assert.NotContains(t, got, "555-123-4567")
	assert.NotContains(t, got, "imgur.com")
	assert.Contains(t, got, "[email]")
	assert.Contains(t, got, "[phone]")
	assert.Contains(t, got, "[link]")

	assert.Equal(t, "Water 2 times a week", f.Redact("Water 2 times a week"))
}

func TestRedact_PhoneFormats(t *testing.T) {
	f := NewFilter()

	tests := []struct {
		in   string
		want string
	}{
		{"call 555-123-4567", "call [phone]"},
		{"call (555) 123-4567", "call [phone]"},
		{"call 5551234567", "call [phone]"},
		{"call 555.123.4567 today", "call [phone] today"},
		{"call +1 555-123-4567", "call [phone]"},
		{"I have 12 plants and 3 cacti", "I have 12 plants and 3 cacti"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Redact(tt.in))
		})
	}
}
