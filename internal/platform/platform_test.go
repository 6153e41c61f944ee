package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id, err := Parse("  Yelp ")
	require.NoError(t, err)
	assert.Equal(t, Yelp, id)

	_, err = Parse("all")
	assert.True(t, errors.Is(err, ErrUnknown), "all is a buffer key, not a platform")
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("ALL")
	require.NoError(t, err)
	assert.Equal(t, KeyAll, k)
	_, ok := k.Platform()
	assert.False(t, ok)

	k, err = ParseKey("merged")
	require.NoError(t, err)
	id, ok := k.Platform()
	assert.True(t, ok)
	assert.Equal(t, Merged, id)

	_, err = ParseKey("twitter")
	assert.Error(t, err)
}

func TestAllReturnsCopy(t *testing.T) {
	ids := All()
	ids[0] = "mutated"
	assert.Equal(t, []ID{IMDB, Yelp, Amazon, Merged}, All())
	assert.Equal(t, []Key{"imdb", "yelp", "amazon", "merged", "all"}, Keys())
}
