package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonatefm/resonate/internal/spotify"
)

func TestGenreBreakdown(t *testing.T) {
	tracks := []spotify.Track{
		{Id: "t1", Artists: []spotify.Artist{{Id: "a1"}}},
		{Id: "t2", Artists: []spotify.Artist{{Id: "a2"}}},
		{Id: "t3", Artists: []spotify.Artist{{Id: "a3"}}},
	}
	genres := map[string][]string{
		"a1": {"A"},
		"a2": {"A"},
		"a3": {"B"},
	}

	shares := genreBreakdown(tracks, genres, topGenresLimit)

	require.Len(t, shares, 2)
	assert.Equal(t, "A", shares[0].Genre)
	assert.InDelta(t, 66.7, shares[0].Percentage, 0.01)
	assert.Equal(t, "B", shares[1].Genre)
	assert.InDelta(t, 33.3, shares[1].Percentage, 0.01)

	total := 0.0
	for _, share := range shares {
		total += share.Percentage
	}
	assert.InDelta(t, 100.0, total, 0.2, "percentages sum to 100 within rounding")
}

func TestGenreBreakdownCountsPerArtistOccurrence(t *testing.T) {
	// The same artist on two tracks contributes its tags twice.
	tracks := []spotify.Track{
		{Id: "t1", Artists: []spotify.Artist{{Id: "a1"}}},
		{Id: "t2", Artists: []spotify.Artist{{Id: "a1"}}},
		{Id: "t3", Artists: []spotify.Artist{{Id: "a2"}}},
	}
	genres := map[string][]string{
		"a1": {"house"},
		"a2": {"techno"},
	}

	shares := genreBreakdown(tracks, genres, topGenresLimit)

	require.Len(t, shares, 2)
	assert.Equal(t, "house", shares[0].Genre)
	assert.InDelta(t, 66.7, shares[0].Percentage, 0.01)
}

func TestGenreBreakdownTruncatesToTopTen(t *testing.T) {
	var tracks []spotify.Track
	genres := make(map[string][]string)
	for i := 0; i < 15; i++ {
		artistId := fmt.Sprintf("a%d", i)
		tracks = append(tracks, spotify.Track{
			Id:      fmt.Sprintf("t%d", i),
			Artists: []spotify.Artist{{Id: artistId}},
		})
		genres[artistId] = []string{fmt.Sprintf("genre-%02d", i)}
	}
	// Make one genre dominant so ordering is observable.
	genres["a0"] = []string{"dominant", "dominant", "dominant"}

	shares := genreBreakdown(tracks, genres, topGenresLimit)

	assert.Len(t, shares, topGenresLimit)
	assert.Equal(t, "dominant", shares[0].Genre)
}

func TestGenreBreakdownEmpty(t *testing.T) {
	shares := genreBreakdown(nil, nil, topGenresLimit)
	assert.Empty(t, shares)

	// Tracks whose artists carry no tags produce no shares either.
	tracks := []spotify.Track{{Id: "t1", Artists: []spotify.Artist{{Id: "a1"}}}}
	shares = genreBreakdown(tracks, map[string][]string{}, topGenresLimit)
	assert.Empty(t, shares)
}
