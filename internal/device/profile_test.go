package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		hints Hints
		want  Class
	}{
		{"desktop agent", Hints{UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"}, ClassStandard},
		{"iphone agent", Hints{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"}, ClassConstrained},
		{"android lowercase", Hints{UserAgent: "mozilla/5.0 (linux; android 14)"}, ClassConstrained},
		{"roomy terminal", Hints{Columns: 120, Rows: 40}, ClassStandard},
		{"narrow terminal", Hints{Columns: 40, Rows: 40}, ClassConstrained},
		{"short terminal", Hints{Columns: 120, Rows: 12}, ClassConstrained},
		{"no hints", Hints{}, ClassStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.hints).Class)
		})
	}
}

func TestProfileCount(t *testing.T) {
	std := Standard()
	con := Constrained()

	assert.Equal(t, 0, std.Count(0))
	assert.Equal(t, 0, con.Count(-3))
	assert.Equal(t, 100, std.Count(100))
	assert.Equal(t, 50, con.Count(100))
	assert.Equal(t, 1, con.Count(1))
	assert.Equal(t, con.MaxEntities, con.Count(1_000_000))
}

func TestFrameIntervals(t *testing.T) {
	assert.InDelta(t, 16.67, float64(Standard().TargetFrameInterval)/float64(time.Millisecond), 0.01)
	assert.InDelta(t, 33.33, float64(Constrained().TargetFrameInterval)/float64(time.Millisecond), 0.01)
	assert.Equal(t, "constrained", ClassConstrained.String())
}
