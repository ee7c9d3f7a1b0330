package service

import (
	"math"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resonatefm/resonate/internal/spotify"
)

const topGenresLimit = 10

// GenreShare is one genre's share of all genre-tag occurrences across the
// caller's top tracks, as a percentage rounded to one decimal.
type GenreShare struct {
	Genre      string  `json:"genre"`
	Percentage float64 `json:"percentage"`
}

// genreBreakdown counts genre tags across each track's artists' genre lists,
// normalizes to percentages of total tag occurrences, sorts descending and
// truncates to topN. A genre contributes once per (track, artist) pairing
// that carries it.
func genreBreakdown(tracks []spotify.Track, genresByArtist map[string][]string, topN int) []GenreShare {
	counts := make(map[string]int)
	total := 0
	for _, track := range tracks {
		for _, artist := range track.Artists {
			for _, genre := range genresByArtist[artist.Id] {
				counts[genre]++
				total++
			}
		}
	}
	if total == 0 {
		return []GenreShare{}
	}

	shares := make([]GenreShare, 0, len(counts))
	for genre, count := range counts {
		pct := math.Round(float64(count)/float64(total)*1000) / 10
		shares = append(shares, GenreShare{Genre: genre, Percentage: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percentage != shares[j].Percentage {
			return shares[i].Percentage > shares[j].Percentage
		}
		return shares[i].Genre < shares[j].Genre
	})

	if len(shares) > topN {
		shares = shares[:topN]
	}
	return shares
}

// StatsHandler computes the caller's genre breakdown from their top tracks
// and appends a stats snapshot (top genre + top track IDs) to their history.
func (s *Service) StatsHandler(c *gin.Context) {
	ident := callerIdentity(c)

	timeRange, ok := s.timeRangeParam(c)
	if !ok {
		return
	}

	token, err := s.tokens.AccessToken(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error getting provider token")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	topTracks, err := s.streaming.GetTopTracks(c.Request.Context(), token, timeRange, topTracksLimit)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching top tracks")
		return
	}

	// Unique artist IDs across all top tracks, in first-seen order.
	seen := make(map[string]bool)
	var artistIds []string
	for _, track := range topTracks {
		for _, artist := range track.Artists {
			if !seen[artist.Id] {
				seen[artist.Id] = true
				artistIds = append(artistIds, artist.Id)
			}
		}
	}

	genresByArtist := make(map[string][]string)
	if len(artistIds) > 0 {
		s.metrics.UpstreamCalls.Inc()
		artists, err := s.streaming.GetArtists(c.Request.Context(), token, artistIds)
		if err != nil {
			s.metrics.UpstreamErrors.Inc()
			abortWithError(c, err, "Error fetching artists")
			return
		}
		for _, artist := range artists {
			genresByArtist[artist.Id] = artist.Genres
		}
	}

	genres := genreBreakdown(topTracks, genresByArtist, topGenresLimit)

	topGenre := ""
	if len(genres) > 0 {
		topGenre = genres[0].Genre
	}
	trackIds := make([]string, len(topTracks))
	for i, track := range topTracks {
		trackIds[i] = track.Id
	}

	callerId, err := s.store.ResolveOrCreateUser(c.Request.Context(),
		ident.Subject, ident.Nickname, ident.Name)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}
	if _, err := s.store.AppendStats(c.Request.Context(), callerId, topGenre, trackIds); err != nil {
		abortWithError(c, err, "Error saving stats")
		return
	}

	logger.Info("Computed stats",
		zap.String("caller", ident.Subject),
		zap.String("timeRange", timeRange),
		zap.String("topGenre", topGenre))
	c.JSON(http.StatusOK, gin.H{
		"topTracks": topTracks,
		"genres":    genres,
	})
}

func (s *Service) LatestStatsHandler(c *gin.Context) {
	ident := callerIdentity(c)

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	stats, err := s.store.GetLatestStats(c.Request.Context(), caller.UserId)
	if err != nil {
		abortWithError(c, err, "Error getting stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
