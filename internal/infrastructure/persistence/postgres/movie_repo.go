package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"movie-recommend-api/internal/domain/entity"
	"movie-recommend-api/internal/domain/repository"
	apperrors "movie-recommend-api/pkg/errors"
)

// MovieRepo 电影仓储的 PostgreSQL 实现
type MovieRepo struct {
	client *Client
}

// NewMovieRepo 创建电影仓储
func NewMovieRepo(client *Client) repository.MovieRepository {
	return &MovieRepo{client: client}
}

// GetByID 根据 ID 获取电影（预加载类型与演员）
func (r *MovieRepo) GetByID(ctx context.Context, id int) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "MovieRepo.GetByID")
	defer span.End()
	span.SetAttributes(attribute.Int("movie.id", id))

	var movie entity.Movie
	err := r.client.db.WithContext(ctx).
		Preload("Genres").
		Preload("Actors").
		First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovieNotFound.WithDetail(fmt.Sprintf("id %d", id))
		}
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get movie")
	}
	return &movie, nil
}

// ListAll 加载全量语料快照（预加载类型与演员，按 ID 升序）
func (r *MovieRepo) ListAll(ctx context.Context) ([]*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "MovieRepo.ListAll")
	defer span.End()

	var movies []*entity.Movie
	err := r.client.db.WithContext(ctx).
		Preload("Genres").
		Preload("Actors").
		Order("id ASC").
		Find(&movies).Error
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list movies")
	}

	span.SetAttributes(attribute.Int("movies.count", len(movies)))
	return movies, nil
}

// SearchByTitle 按标题模糊搜索，前缀命中排在子串命中之前
func (r *MovieRepo) SearchByTitle(ctx context.Context, query string, pagination repository.Pagination) (*repository.PagedResult[*entity.Movie], error) {
	ctx, span := tracer.Start(ctx, "MovieRepo.SearchByTitle")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query))

	pattern := "%" + query + "%"
	base := r.client.db.WithContext(ctx).
		Model(&entity.Movie{}).
		Where("title ILIKE ?", pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count movies")
	}

	var movies []*entity.Movie
	err := r.client.db.WithContext(ctx).
		Preload("Genres").
		Where("title ILIKE ?", pattern).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(title ILIKE ?) DESC, vote_count DESC, id ASC",
			Vars:               []interface{}{query + "%"},
			WithoutParentheses: true,
		}}).
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&movies).Error
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to search movies")
	}

	span.SetAttributes(attribute.Int64("search.total", total))
	return &repository.PagedResult[*entity.Movie]{Items: movies, Total: total}, nil
}

// Random 随机取样
func (r *MovieRepo) Random(ctx context.Context, limit int) ([]*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "MovieRepo.Random")
	defer span.End()
	span.SetAttributes(attribute.Int("sample.limit", limit))

	var movies []*entity.Movie
	err := r.client.db.WithContext(ctx).
		Preload("Genres").
		Order("RANDOM()").
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to sample movies")
	}
	return movies, nil
}

// Count 统计电影总数
func (r *MovieRepo) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "MovieRepo.Count")
	defer span.End()

	var total int64
	err := r.client.db.WithContext(ctx).Model(&entity.Movie{}).Count(&total).Error
	if err != nil {
		span.RecordError(err)
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count movies")
	}
	return total, nil
}
