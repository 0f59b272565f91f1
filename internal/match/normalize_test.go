package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Sitzheizung", "sitzheizung"},
		{"Wärmepumpe", "warmepumpe"},
		{"Größe", "grosse"},
		{"Head-Up Display", "head up display"},
		{"360° Kamera", "360 kamera"},
		{"CO₂-Ausstoß", "co2 ausstoss"},
		{"m² Kofferraum", "m2 kofferraum"},
		{"harman/kardon", "harman kardon"},
		{"  Schiebedach  ", "schiebedach"},
		{"Él é gànt", "el e gant"},
		{"A   B\tC", "a b c"},
		{"(Leder)", "leder"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Sitzheizung",
		"Wärmepumpe",
		"Head-Up Display",
		"360° Kamera",
		"M Sportpaket Pro!",
		"ÄÖÜ ß éàè",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
