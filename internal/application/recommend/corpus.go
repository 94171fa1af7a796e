package recommend

import (
	"fmt"

	"movie-recommend-api/pkg/errors"
)

// Corpus 一次快照的全量语料。
// 构建完成后只读；重建总是整体替换，绝不增量修改。
type Corpus struct {
	items []*Item
	byID  map[int]*Item
	// dim 全语料统一的向量维度，0 表示尚无任何向量
	dim int
}

// NewCorpus 由条目序列构建语料。
// 向量维度在此处校验：与首个向量维度不一致的条目直接拒绝（硬错误），
// 而不是留到查询时再暴露。
func NewCorpus(items []*Item) (*Corpus, error) {
	byID := make(map[int]*Item, len(items))
	dim := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := byID[item.ID]; exists {
			return nil, errors.ErrInvalidParam.WithDetail(fmt.Sprintf("duplicate item id %d", item.ID))
		}
		byID[item.ID] = item

		if !item.HasEmbedding() {
			continue
		}
		if dim == 0 {
			dim = len(item.Embedding)
			continue
		}
		if len(item.Embedding) != dim {
			return nil, errors.ErrDimensionMismatch.WithDetail(
				fmt.Sprintf("item %d has embedding of length %d, index dimension is %d", item.ID, len(item.Embedding), dim))
		}
	}

	kept := make([]*Item, 0, len(byID))
	for _, item := range items {
		if item != nil {
			kept = append(kept, item)
		}
	}

	return &Corpus{items: kept, byID: byID, dim: dim}, nil
}

// Len 条目总数
func (c *Corpus) Len() int {
	return len(c.items)
}

// Get 按 ID 查找条目
func (c *Corpus) Get(id int) (*Item, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Items 按载入顺序返回全部条目（调用方只读）
func (c *Corpus) Items() []*Item {
	return c.items
}

// Dimension 向量维度
func (c *Corpus) Dimension() int {
	return c.dim
}
