package predict

import (
	"testing"

	"sentidash/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModeRoundTrip(t *testing.T) {
	modes := []RequestMode{
		SinglePlatform{Platform: platform.IMDB},
		SinglePlatform{Platform: platform.Merged},
		AllPlatforms{},
		GlobalCombined{},
	}
	for _, m := range modes {
		got, err := ParseMode(m.Target())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("twitter")
	assert.Error(t, err)
}

func TestBufferKey(t *testing.T) {
	assert.Equal(t, platform.Key("yelp"), BufferKey(SinglePlatform{Platform: platform.Yelp}))
	assert.Equal(t, platform.KeyAll, BufferKey(AllPlatforms{}))
	assert.Equal(t, platform.KeyAll, BufferKey(GlobalCombined{}))
}
