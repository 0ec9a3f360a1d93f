package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet_ParseIgnoresBlanks(t *testing.T) {
	t.Parallel()

	s := ParseStringSet(" Krimi, ,Thriller,Krimi ")
	assert.Equal(t, []string{"Krimi", "Thriller"}, s.Sorted())
	assert.Equal(t, "Krimi,Thriller", s.String())
}

func TestStringSet_ValueAndScan(t *testing.T) {
	t.Parallel()

	v, err := NewStringSet("b", "a").Value()
	require.NoError(t, err)
	assert.Equal(t, "a,b", v)

	var s StringSet
	require.NoError(t, s.Scan([]byte("x,y")))
	assert.True(t, s.Equal(NewStringSet("y", "x")))

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}

func TestStringSet_Union(t *testing.T) {
	t.Parallel()

	a := NewStringSet("Paris")
	b := NewStringSet("London", "Paris")
	u := a.Union(b)
	assert.Equal(t, []string{"London", "Paris"}, u.Sorted())
	assert.Len(t, a, 1)
}

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"de":      LanguageDE,
		"ger":     LanguageDE,
		"Deutsch": LanguageDE,
		"en-US":   LanguageEN,
		"english": LanguageEN,
		"fr_CA":   LanguageFR,
		"spa":     LanguageES,
		"it":      LanguageIT,
		"nl":      DefaultLanguage,
		"":        DefaultLanguage,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, NormalizeLanguage(in), in)
	}
}

func TestAuthorSentinels(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSentinelName("unknown"))
	assert.True(t, IsSentinelName("Kein Autor"))
	assert.True(t, (&Author{Lastname: "Unbekannt"}).IsSentinel())
	assert.False(t, (&Author{Firstname: "Stephen", Lastname: "King"}).IsSentinel())
}

func TestTitleAndNameSlots(t *testing.T) {
	t.Parallel()

	w := &Work{}
	*w.TitleSlot(LanguageEN) = "It"
	assert.Equal(t, "It", w.TitleEN)
	assert.Nil(t, w.TitleSlot("nl"))

	s := &Series{}
	*s.NameSlot("") = "Discworld"
	assert.Equal(t, "Discworld", s.NameEN)
}
