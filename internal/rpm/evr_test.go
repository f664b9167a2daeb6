package rpm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVercmp(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "2.0", -1},
		{"2.0", "1.0", 1},
		{"2.31", "2.5", 1},
		{"1.10", "1.9", 1},
		{"1.001", "1.1", 0},
		{"1.0a", "1.0", 1},
		{"1.0", "1.0a", -1},
		{"1.0.1", "1.0a", 1}, // digits beat letters
		{"5.1", "5.1.0", -1},
		{"1_0", "1.0", 0},
		{"1.0~rc1", "1.0", -1},
		{"1.0~rc1", "1.0~rc2", -1},
		{"1.0^git1", "1.0", 1},
		{"1.0^git1", "1.0.1", -1},
		{"1.0^git1", "1.0a", -1}, // caret sorts before any further segment
		{"1.0^", "1.0", 1},
		{"1.0^git1", "1.0^git2", -1},
		{"fc38", "fc39", -1},
		{"1.", "1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got := Vercmp(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Vercmp(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareEVR(t *testing.T) {
	tests := []struct {
		name string
		a    EVR
		b    EVR
		want int
	}{
		{"epoch wins", EVR{1, "1.0", "1"}, EVR{0, "9.9", "9"}, 1},
		{"version", EVR{0, "2.0", "1"}, EVR{0, "1.0", "9"}, 1},
		{"release", EVR{0, "1.0", "2"}, EVR{0, "1.0", "10"}, -1},
		{"equal", EVR{0, "1.0", "1"}, EVR{0, "1.0", "1"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareEVR(tt.a, tt.b))
		})
	}
}

func TestParseEVR(t *testing.T) {
	tests := []struct {
		input string
		want  EVR
	}{
		{"1.0", EVR{0, "1.0", ""}},
		{"1.0-2", EVR{0, "1.0", "2"}},
		{"3:1.0-2.fc39", EVR{3, "1.0", "2.fc39"}},
		{"2:5", EVR{2, "5", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEVR(tt.input))
		})
	}
}
