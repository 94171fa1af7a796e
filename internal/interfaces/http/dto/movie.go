package dto

import (
	"movie-recommend-api/internal/domain/entity"
)

// MovieBrief 列表与推荐结果中的电影摘要
type MovieBrief struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date,omitempty"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
	PosterPath  string   `json:"poster_path,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// MovieDetail 电影详情
type MovieDetail struct {
	MovieBrief
	IMDBID   string   `json:"imdb_id,omitempty"`
	Overview string   `json:"overview,omitempty"`
	Actors   []string `json:"actors,omitempty"`
}

// SearchMoviesQuery 电影搜索请求参数
type SearchMoviesQuery struct {
	Query    string `form:"query"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// NewMovieBrief 由实体构建摘要
func NewMovieBrief(m *entity.Movie) MovieBrief {
	return MovieBrief{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		PosterPath:  m.PosterPath,
		Genres:      m.GenreNames(),
	}
}

// NewMovieBriefs 由实体列表构建摘要列表
func NewMovieBriefs(movies []*entity.Movie) []MovieBrief {
	briefs := make([]MovieBrief, 0, len(movies))
	for _, m := range movies {
		briefs = append(briefs, NewMovieBrief(m))
	}
	return briefs
}

// NewMovieDetail 由实体构建详情
func NewMovieDetail(m *entity.Movie) MovieDetail {
	return MovieDetail{
		MovieBrief: NewMovieBrief(m),
		IMDBID:     m.IMDBID,
		Overview:   m.Overview,
		Actors:     m.ActorNames(),
	}
}
