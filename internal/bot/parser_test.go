package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain integer", "100", "100", true},
		{"explicit plus", "+100", "100", true},
		{"negative", "-30", "-30", true},
		{"decimal", "12.50", "12.5", true},
		{"negative decimal", "-0.01", "-0.01", true},
		{"zero", "0", "0", true},
		{"signed zero", "-0", "0", true},
		{"surrounding whitespace", "  +42  ", "42", true},
		{"empty", "", "", false},
		{"words", "hello", "", false},
		{"number with trailing text", "12.50 lunch", "", false},
		{"number with leading text", "spent 12.50", "", false},
		{"two numbers", "10 20", "", false},
		{"double sign", "+-5", "", false},
		{"bare sign", "+", "", false},
		{"bare dot", ".", "", false},
		{"trailing dot", "5.", "", false},
		{"leading dot", ".5", "", false},
		{"comma separator", "5,50", "", false},
		{"scientific notation", "1e10", "", false},
		{"double dot", "5..5", "", false},
		{"internal whitespace", "1 0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got.String())
			} else {
				require.True(t, got.IsZero())
			}
		})
	}
}
