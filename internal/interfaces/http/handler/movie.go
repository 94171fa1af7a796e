package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"movie-recommend-api/internal/domain/repository"
	"movie-recommend-api/internal/interfaces/http/dto"
	"movie-recommend-api/pkg/errors"
)

// MovieHandler 电影查询处理器
type MovieHandler struct {
	repo repository.MovieRepository
}

// NewMovieHandler 创建电影查询处理器
func NewMovieHandler(repo repository.MovieRepository) *MovieHandler {
	return &MovieHandler{repo: repo}
}

// Search 电影搜索接口
// @Summary 按标题搜索电影
// @Tags Movie
// @Produce json
// @Param query query string false "标题关键词"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} dto.Response[[]dto.MovieBrief]
// @Router /v1/movies [get]
func (h *MovieHandler) Search(c *gin.Context) {
	var q dto.SearchMoviesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	// 无关键词时返回随机落地页样本
	if strings.TrimSpace(q.Query) == "" {
		movies, err := h.repo.Random(c.Request.Context(), q.PageSize)
		if err != nil {
			dto.Error(c, err)
			return
		}
		total, err := h.repo.Count(c.Request.Context())
		if err != nil {
			dto.Error(c, err)
			return
		}
		dto.SuccessWithPage(c, dto.NewMovieBriefs(movies),
			dto.NewPageMeta(1, q.PageSize, int(total)))
		return
	}

	result, err := h.repo.SearchByTitle(c.Request.Context(), q.Query, repository.Pagination{
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.NewMovieBriefs(result.Items),
		dto.NewPageMeta(q.Page, q.PageSize, int(result.Total)))
}

// Get 电影详情接口
// @Summary 电影详情
// @Tags Movie
// @Produce json
// @Param id path int true "电影 ID"
// @Success 200 {object} dto.Response[dto.MovieDetail]
// @Router /v1/movies/{id} [get]
func (h *MovieHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.BadRequest(c, "id must be an integer")
		return
	}

	movie, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		dto.Error(c, err)
		return
	}

	dto.Success(c, dto.NewMovieDetail(movie))
}

// Random 随机电影接口
// @Summary 随机取样电影
// @Tags Movie
// @Produce json
// @Param limit query int false "取样条数"
// @Success 200 {object} dto.Response[[]dto.MovieBrief]
// @Router /v1/movies/random [get]
func (h *MovieHandler) Random(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		dto.Error(c, errors.ErrInvalidParam.WithDetail("limit must be a positive integer"))
		return
	}
	if limit > 100 {
		limit = 100
	}

	movies, err := h.repo.Random(c.Request.Context(), limit)
	if err != nil {
		dto.Error(c, err)
		return
	}

	dto.Success(c, dto.NewMovieBriefs(movies))
}
