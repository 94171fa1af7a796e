// Package catalog 负责把数据库中的电影数据装配成推荐语料
package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"movie-recommend-api/internal/application/recommend"
	"movie-recommend-api/internal/domain/repository"
	"movie-recommend-api/pkg/logger"
)

// Loader 全量加载电影并重建推荐索引
type Loader struct {
	repo   repository.MovieRepository
	engine *recommend.Engine
}

// NewLoader 创建加载器
func NewLoader(repo repository.MovieRepository, engine *recommend.Engine) *Loader {
	return &Loader{repo: repo, engine: engine}
}

// Reload 从数据库拉取全量电影并触发一次快照重建。
// 脏数据只降级不报错：titlewords 或 embedding_vector 解析失败时
// 该条目按缺失对应特征处理，记 WARN 日志后继续。
func (l *Loader) Reload(ctx context.Context) error {
	start := time.Now()
	movies, err := l.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	items := make([]*recommend.Item, 0, len(movies))
	badTitleWords, badEmbeddings := 0, 0
	for _, m := range movies {
		titleTokens, ok := parseTitleWords(m.TitleWords)
		if !ok {
			badTitleWords++
			logger.Warn(ctx, "titlewords 解析失败，按缺失处理", "movie_id", m.ID)
		}
		embedding, ok := parseEmbedding(m.Embedding)
		if !ok {
			badEmbeddings++
			logger.Warn(ctx, "embedding_vector 解析失败，按缺失处理", "movie_id", m.ID)
		}

		items = append(items, recommend.NewItem(recommend.ItemParams{
			ID:          m.ID,
			Title:       m.Title,
			Overview:    m.Overview,
			ReleaseDate: m.ReleaseDate,
			PosterPath:  m.PosterPath,
			Rating:      m.VoteAverage,
			VoteCount:   m.VoteCount,
			Genres:      m.GenreNames(),
			Actors:      m.ActorNames(),
			TitleTokens: titleTokens,
			Embedding:   embedding,
		}))
	}

	if err := l.engine.Rebuild(ctx, items); err != nil {
		return err
	}

	logger.Info(ctx, "语料加载完成",
		"movies", len(items),
		"bad_titlewords", badTitleWords,
		"bad_embeddings", badEmbeddings,
		"duration", time.Since(start).String())
	return nil
}

// parseTitleWords 解析标题词 JSON 数组列，空列视为无标题词
func parseTitleWords(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, false
	}
	return tokens, true
}

// parseEmbedding 解析向量 JSON 数组列，空列视为无向量
func parseEmbedding(raw string) ([]float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	var vec []float64
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false
	}
	return vec, true
}
