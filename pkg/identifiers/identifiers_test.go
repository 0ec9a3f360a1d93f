package identifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    string
		expected Type
	}{
		{"9780316769488", TypeISBN13},
		{"978-0-316-76948-8", TypeISBN13},
		{"0316769487", TypeISBN10},
		{"080442957X", TypeISBN10},
		{"9780316769489", TypeUnknown},
		{"B08N5WRWNW", TypeUnknown},
		{"", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectType(tt.value))
		})
	}
}

func TestNormalizeISBN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    string
		expected string
	}{
		{"978-0-316-76948-8", "9780316769488"},
		{"0-316-76948-7", "0316769487"},
		{"978 0 316 76948 8", "9780316769488"},
		{"ISBN: 9780316769488", "9780316769488"},
		{"urn:isbn:9780316769488", "9780316769488"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.value))
		})
	}
}

func TestTo13AndBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "9780316769488", To13("0316769487"))
	assert.Equal(t, "0316769487", To10("9780316769488"))
	assert.Equal(t, "9780804429573", To13("080442957X"))
	assert.Equal(t, "080442957X", To10("9780804429573"))
	assert.Empty(t, To13("0316769488"))
	assert.Empty(t, To10("9790316769487"))
}

func TestBest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "9780316769488", Best("0316769487", "978-0-316-76948-8"))
	assert.Equal(t, "9780316769488", Best("garbage", "0316769487"))
	assert.Empty(t, Best("garbage", ""))
}
