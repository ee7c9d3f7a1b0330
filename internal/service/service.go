package service

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/resonatefm/resonate/internal/db"
	"github.com/resonatefm/resonate/internal/identity"
	"github.com/resonatefm/resonate/internal/recommend"
	"github.com/resonatefm/resonate/internal/spotify"
)

type Message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Store is the persistence surface the handlers need. db.Store satisfies it;
// tests substitute fakes.
type Store interface {
	ResolveOrCreateUser(ctx context.Context, externalId, username, displayName string) (string, error)
	GetUserByExternalId(ctx context.Context, externalId string) (*db.User, error)
	GetUserById(ctx context.Context, userId string) (*db.User, error)
	SearchUsersByUsername(ctx context.Context, query string) ([]*db.User, error)
	AddFriend(ctx context.Context, callerExternalId, targetExternalId string) (bool, error)
	ListFriends(ctx context.Context, callerExternalId string) ([]*db.User, error)
	SavePlaylist(ctx context.Context, ownerId, name string, tracks []string) (string, error)
	GetMostRecentPlaylist(ctx context.Context, ownerId string) (*db.Playlist, error)
	GetAllPlaylists(ctx context.Context, ownerId string) ([]*db.Playlist, error)
	DeletePlaylist(ctx context.Context, callerId, playlistId string) error
	AppendStats(ctx context.Context, ownerId, topGenre string, topTracks []string) (string, error)
	GetLatestStats(ctx context.Context, ownerId string) (*db.Stats, error)
}

// Streaming is the subset of the provider client the handlers use.
type Streaming interface {
	GetTopTracks(ctx context.Context, token, timeRange string, limit int) ([]spotify.Track, error)
	GetTracks(ctx context.Context, token string, ids []string) ([]spotify.Track, error)
	GetArtists(ctx context.Context, token string, ids []string) ([]spotify.Artist, error)
	CreatePlaylist(ctx context.Context, token, name, description string, public bool) (*spotify.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, token, playlistId string, uris []string) error
}

type Service struct {
	store       Store
	streaming   Streaming
	recommender recommend.Recommender
	verifier    identity.Verifier
	tokens      identity.TokenSource
	metrics     *Metrics
}

func New(store Store, streaming Streaming, recommender recommend.Recommender,
	verifier identity.Verifier, tokens identity.TokenSource, metrics *Metrics) *Service {
	return &Service{
		store:       store,
		streaming:   streaming,
		recommender: recommender,
		verifier:    verifier,
		tokens:      tokens,
		metrics:     metrics,
	}
}

// RegisterRoutes mounts the API surface on the router. Every /api route runs
// behind session authentication; the caller identity is threaded explicitly
// from the middleware into each data-access call.
func (s *Service) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(s.AuthRequired())

	api.POST("/user/login", s.LoginHandler)
	api.GET("/users/search", s.SearchUsersHandler)
	api.GET("/users/:id", s.UserProfileHandler)
	api.POST("/friends", s.AddFriendHandler)
	api.GET("/friends", s.ListFriendsHandler)

	api.GET("/top-tracks", s.TopTracksHandler)
	api.GET("/recommendation", s.RecommendationsHandler)
	api.GET("/trackinfo", s.TrackInfoHandler)

	api.GET("/stats", s.StatsHandler)
	api.GET("/stats/latest", s.LatestStatsHandler)

	api.GET("/playlists", s.GetPlaylistsHandler)
	api.GET("/playlists/latest", s.LatestPlaylistHandler)
	api.POST("/playlists", s.SavePlaylistHandler)
	api.DELETE("/playlists/:id", s.DeletePlaylistHandler)
	api.POST("/export-playlist", s.ExportPlaylistHandler)
}
