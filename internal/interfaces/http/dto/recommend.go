package dto

import (
	"movie-recommend-api/internal/application/recommend"
)

// RecommendQuery 推荐请求参数
type RecommendQuery struct {
	Strategy string `form:"strategy,default=composite"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
}

// SectionsQuery 详情页推荐栏目请求参数
type SectionsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// ScoreBreakdown 综合策略的各信号得分
type ScoreBreakdown struct {
	GenreOverlap     int     `json:"genre_overlap"`
	ActorOverlap     int     `json:"actor_overlap"`
	RatingScore      float64 `json:"rating_score"`
	VotesScore       float64 `json:"votes_score"`
	OverviewOverlap  int     `json:"overview_overlap"`
	TitleWordOverlap int     `json:"titleword_overlap"`
}

// ScoredMovie 带得分的推荐候选
type ScoredMovie struct {
	MovieBrief
	Score     float64         `json:"score"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

// Recommendation 单策略推荐结果
type Recommendation struct {
	MovieID    int           `json:"movie_id"`
	Strategy   string        `json:"strategy"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Items      []ScoredMovie `json:"items"`
}

// Section 详情页单个推荐栏目
type Section struct {
	Strategy   string        `json:"strategy"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Items      []ScoredMovie `json:"items"`
}

// SectionsResponse 详情页全部推荐栏目
type SectionsResponse struct {
	Movie    MovieDetail `json:"movie"`
	Sections []Section   `json:"sections"`
}

// RebuildResponse 重建响应
type RebuildResponse struct {
	Generation uint64 `json:"generation"`
	Items      int    `json:"items"`
}

// newScoredMovie 由引擎条目构建候选
func newScoredMovie(s recommend.ScoredItem) ScoredMovie {
	sm := ScoredMovie{
		MovieBrief: MovieBrief{
			ID:          s.Item.ID,
			Title:       s.Item.Title,
			ReleaseDate: s.Item.ReleaseDate,
			VoteAverage: s.Item.Rating,
			VoteCount:   s.Item.VoteCount,
			PosterPath:  s.Item.PosterPath,
			Genres:      s.Item.Genres,
		},
		Score: s.Score,
	}
	if s.Breakdown != nil {
		sm.Breakdown = &ScoreBreakdown{
			GenreOverlap:     s.Breakdown.GenreOverlap,
			ActorOverlap:     s.Breakdown.ActorOverlap,
			RatingScore:      s.Breakdown.RatingScore,
			VotesScore:       s.Breakdown.VotesScore,
			OverviewOverlap:  s.Breakdown.OverviewOverlap,
			TitleWordOverlap: s.Breakdown.TitleWordOverlap,
		}
	}
	return sm
}

// NewRecommendation 由引擎结果构建响应
func NewRecommendation(movieID int, r recommend.RankedResult) Recommendation {
	items := make([]ScoredMovie, 0, len(r.Items))
	for _, s := range r.Items {
		items = append(items, newScoredMovie(s))
	}
	return Recommendation{
		MovieID:    movieID,
		Strategy:   string(r.Strategy),
		SkipReason: string(r.Skip),
		Items:      items,
	}
}

// NewRandomSection 由随机取样构建详情页首个栏目
func NewRandomSection(items []*recommend.Item) Section {
	scored := make([]ScoredMovie, 0, len(items))
	for _, it := range items {
		scored = append(scored, ScoredMovie{
			MovieBrief: MovieBrief{
				ID:          it.ID,
				Title:       it.Title,
				ReleaseDate: it.ReleaseDate,
				VoteAverage: it.Rating,
				VoteCount:   it.VoteCount,
				PosterPath:  it.PosterPath,
				Genres:      it.Genres,
			},
		})
	}
	return Section{Strategy: "random", Items: scored}
}

// NewSection 由引擎结果构建栏目
func NewSection(r recommend.RankedResult) Section {
	items := make([]ScoredMovie, 0, len(r.Items))
	for _, s := range r.Items {
		items = append(items, newScoredMovie(s))
	}
	return Section{
		Strategy:   string(r.Strategy),
		SkipReason: string(r.Skip),
		Items:      items,
	}
}
