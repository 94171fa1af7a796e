package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommend-api/internal/application/catalog"
	"movie-recommend-api/internal/application/recommend"
	"movie-recommend-api/internal/config"
	"movie-recommend-api/internal/domain/entity"
	"movie-recommend-api/internal/domain/repository"
	"movie-recommend-api/internal/interfaces/http/dto"
	"movie-recommend-api/pkg/errors"
)

type stubMovieRepo struct {
	movies []*entity.Movie
}

func (s *stubMovieRepo) GetByID(ctx context.Context, id int) (*entity.Movie, error) {
	for _, m := range s.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.ErrMovieNotFound.WithDetail(fmt.Sprintf("id %d", id))
}

func (s *stubMovieRepo) ListAll(ctx context.Context) ([]*entity.Movie, error) {
	return s.movies, nil
}

func (s *stubMovieRepo) SearchByTitle(ctx context.Context, query string, p repository.Pagination) (*repository.PagedResult[*entity.Movie], error) {
	return &repository.PagedResult[*entity.Movie]{Items: s.movies, Total: int64(len(s.movies))}, nil
}

func (s *stubMovieRepo) Random(ctx context.Context, limit int) ([]*entity.Movie, error) {
	if limit < len(s.movies) {
		return s.movies[:limit], nil
	}
	return s.movies, nil
}

func (s *stubMovieRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.movies)), nil
}

func testMovies() []*entity.Movie {
	scifi := &entity.Genre{ID: 1, Name: "Sci-Fi"}
	return []*entity.Movie{
		{
			ID: 1, Title: "Star Wars", Overview: "galactic rebellion against the empire",
			VoteAverage: 8.6, VoteCount: 6000,
			TitleWords: `["star","wars"]`, Embedding: `[1,0,0]`,
			Genres: []*entity.Genre{scifi},
		},
		{
			ID: 2, Title: "Star Trek", Overview: "starship crew explores the galaxy",
			VoteAverage: 8.0, VoteCount: 4000,
			TitleWords: `["star","trek"]`, Embedding: `[0.9,0.1,0]`,
			Genres: []*entity.Genre{scifi},
		},
		{
			ID: 3, Title: "Notting Hill", Overview: "a bookshop owner falls in love",
			VoteAverage: 7.1, VoteCount: 1500,
			TitleWords: `["notting","hill"]`, Embedding: `[0,1,0]`,
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubMovieRepo{movies: testMovies()}
	engine := recommend.NewEngine(recommend.Options{DefaultLimit: 10})
	loader := catalog.NewLoader(repo, engine)
	require.NoError(t, loader.Reload(context.Background()))

	cfg := &config.RecommendConfig{
		DefaultLimit: 10,
		MaxLimit:     50,
		SectionLimit: 4,
	}
	h := NewRecommendHandler(engine, repo, loader, nil, cfg)
	mh := NewMovieHandler(repo)

	r := gin.New()
	r.GET("/v1/movies", mh.Search)
	r.GET("/v1/movies/:id", mh.Get)
	r.GET("/v1/movies/:id/recommendations", h.Recommend)
	r.GET("/v1/movies/:id/sections", h.Sections)
	r.POST("/v1/admin/rebuild", h.Rebuild)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRecommendEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/1/recommendations?strategy=composite&limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.Recommendation]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.MovieID)
	assert.Equal(t, "composite", resp.Data.Strategy)
	assert.Empty(t, resp.Data.SkipReason)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, 2, resp.Data.Items[0].ID)
	assert.NotNil(t, resp.Data.Items[0].Breakdown)
}

func TestRecommendEndpointDefaultStrategy(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/1/recommendations")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.Recommendation]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "composite", resp.Data.Strategy)
}

func TestRecommendEndpointUnknownStrategy(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/1/recommendations?strategy=psychic")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "4001", resp.Code)
}

func TestRecommendEndpointMovieNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/999/recommendations")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "3001", resp.Code)
}

func TestRecommendEndpointBadID(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/abc/recommendations")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSectionsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/1/sections")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.SectionsResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Movie.ID)
	assert.Equal(t, "Star Wars", resp.Data.Movie.Title)

	// 随机栏目在前，五个策略栏目随后
	require.Len(t, resp.Data.Sections, 6)
	assert.Equal(t, "random", resp.Data.Sections[0].Strategy)
	for _, section := range resp.Data.Sections {
		assert.LessOrEqual(t, len(section.Items), 4)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/v1/admin/rebuild")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.RebuildResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2), resp.Data.Generation)
	assert.Equal(t, 3, resp.Data.Items)
}

func TestMovieDetailEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/movies/3")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.MovieDetail]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Notting Hill", resp.Data.Title)
	assert.Equal(t, "a bookshop owner falls in love", resp.Data.Overview)
}
