package components

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0:00"},
		{"single digit seconds", 5, "0:05"},
		{"minute and change", 75, "1:15"},
		{"fractional", 134.9, "2:14"},
		{"long", 3725, "62:05"},
		{"nan", math.NaN(), "0:00"},
		{"infinite", math.Inf(1), "0:00"},
		{"negative", -3, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.seconds))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2:15", FormatDuration(135*time.Second))
	assert.Equal(t, "0:00", FormatDuration(0))
}

func TestProgressBar_Percent(t *testing.T) {
	tests := []struct {
		name           string
		current, total time.Duration
		want           float64
	}{
		{"unknown total", 10 * time.Second, 0, 0},
		{"half", 30 * time.Second, time.Minute, 0.5},
		{"overshoot", 2 * time.Minute, time.Minute, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgressBar(40)
			p.SetProgress(tt.current, tt.total)
			assert.InDelta(t, tt.want, p.Percent(), 1e-9)
		})
	}
}

func TestProgressBar_View(t *testing.T) {
	p := NewProgressBar(40)
	p.SetProgress(75*time.Second, 135*time.Second)

	out := p.View()
	assert.Contains(t, out, "1:15")
	assert.Contains(t, out, "-1:00")
	assert.Contains(t, out, "2:15")
	assert.Equal(t, 2, len(strings.Split(out, "\n")))
}
