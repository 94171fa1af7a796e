package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"movie-recommend-api/internal/application/catalog"
	"movie-recommend-api/internal/application/recommend"
	"movie-recommend-api/internal/config"
	"movie-recommend-api/internal/domain/repository"
	"movie-recommend-api/internal/infrastructure/persistence/redis"
	"movie-recommend-api/internal/interfaces/http/dto"
	"movie-recommend-api/pkg/logger"
)

// RecommendHandler 推荐接口处理器
type RecommendHandler struct {
	engine *recommend.Engine
	repo   repository.MovieRepository
	loader *catalog.Loader
	// cache 可选，nil 时直连引擎
	cache *redis.ResultCache
	cfg   *config.RecommendConfig
}

// NewRecommendHandler 创建推荐接口处理器
func NewRecommendHandler(
	engine *recommend.Engine,
	repo repository.MovieRepository,
	loader *catalog.Loader,
	cache *redis.ResultCache,
	cfg *config.RecommendConfig,
) *RecommendHandler {
	return &RecommendHandler{
		engine: engine,
		repo:   repo,
		loader: loader,
		cache:  cache,
		cfg:    cfg,
	}
}

// clampLimit 归一化返回条数
func (h *RecommendHandler) clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if h.cfg.MaxLimit > 0 && limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}
	return limit
}

// Recommend 单策略推荐接口
// @Summary 按策略推荐相似电影
// @Tags Recommend
// @Produce json
// @Param id path int true "电影 ID"
// @Param strategy query string false "策略名" Enums(lexical, embedding, composite, title_overlap, genre_overlap)
// @Param limit query int false "返回条数"
// @Success 200 {object} dto.Response[dto.Recommendation]
// @Router /v1/movies/{id}/recommendations [get]
func (h *RecommendHandler) Recommend(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.BadRequest(c, "id must be an integer")
		return
	}

	var q dto.RecommendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	strategy, err := recommend.ParseStrategy(q.Strategy)
	if err != nil {
		dto.Error(c, err)
		return
	}
	limit := h.clampLimit(q.Limit, h.cfg.DefaultLimit)

	ctx := logger.WithContext(c.Request.Context(), logger.StrategyKey, string(strategy))

	load := func() ([]byte, error) {
		result, err := h.engine.Recommend(ctx, id, strategy, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(dto.NewRecommendation(id, result))
	}

	var payload []byte
	if h.cache != nil {
		key := redis.RecommendKey(h.engine.Generation(), string(strategy), id, limit)
		payload, err = h.cache.GetOrLoad(ctx, key, h.cfg.CacheTTL, load)
	} else {
		payload, err = load()
	}
	if err != nil {
		dto.Error(c, err)
		return
	}

	dto.Success(c, json.RawMessage(payload))
}

// Sections 详情页推荐栏目接口
// @Summary 电影详情页的全部推荐栏目
// @Tags Recommend
// @Produce json
// @Param id path int true "电影 ID"
// @Param limit query int false "每栏目条数"
// @Success 200 {object} dto.Response[dto.SectionsResponse]
// @Router /v1/movies/{id}/sections [get]
func (h *RecommendHandler) Sections(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.BadRequest(c, "id must be an integer")
		return
	}

	var q dto.SectionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	limit := h.clampLimit(q.Limit, h.cfg.SectionLimit)

	ctx := c.Request.Context()

	load := func() ([]byte, error) {
		movie, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		results, err := h.engine.RecommendAll(ctx, id, limit)
		if err != nil {
			return nil, err
		}

		resp := dto.SectionsResponse{
			Movie:    dto.NewMovieDetail(movie),
			Sections: make([]dto.Section, 0, len(recommend.Strategies)+1),
		}
		resp.Sections = append(resp.Sections, dto.NewRandomSection(h.engine.Random(limit)))
		for _, strategy := range recommend.Strategies {
			resp.Sections = append(resp.Sections, dto.NewSection(results[strategy]))
		}
		return json.Marshal(resp)
	}

	var payload []byte
	if h.cache != nil {
		key := redis.SectionsKey(h.engine.Generation(), id, limit)
		payload, err = h.cache.GetOrLoad(ctx, key, h.cfg.CacheTTL, load)
	} else {
		payload, err = load()
	}
	if err != nil {
		dto.Error(c, err)
		return
	}

	dto.Success(c, json.RawMessage(payload))
}

// Rebuild 重建索引接口
// @Summary 重载语料并重建索引
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[dto.RebuildResponse]
// @Router /v1/admin/rebuild [post]
func (h *RecommendHandler) Rebuild(c *gin.Context) {
	if err := h.loader.Reload(c.Request.Context()); err != nil {
		dto.Error(c, err)
		return
	}

	dto.Success(c, dto.RebuildResponse{
		Generation: h.engine.Generation(),
		Items:      h.engine.Len(),
	})
}
