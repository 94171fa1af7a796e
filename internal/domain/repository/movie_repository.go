// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"movie-recommend-api/internal/domain/entity"
)

// Pagination 分页参数
type Pagination struct {
	Page     int
	PageSize int
}

// Offset 计算偏移量
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items []T
	Total int64
}

// MovieRepository 电影仓储接口
type MovieRepository interface {
	// GetByID 根据 ID 获取电影（预加载类型与演员）
	GetByID(ctx context.Context, id int) (*entity.Movie, error)

	// ListAll 加载全量语料快照（预加载类型与演员，按 ID 升序）
	ListAll(ctx context.Context) ([]*entity.Movie, error)

	// SearchByTitle 按标题模糊搜索（大小写不敏感，前缀优先）
	SearchByTitle(ctx context.Context, query string, pagination Pagination) (*PagedResult[*entity.Movie], error)

	// Random 随机取样
	Random(ctx context.Context, limit int) ([]*entity.Movie, error)

	// Count 统计电影总数
	Count(ctx context.Context) (int64, error)
}
