package recommend

import (
	"math"
	"sort"
)

// EmbeddingIndex 稠密向量余弦相似索引。
// 范数在构建时一次算好，查询只做点积；构建完成后只读。
type EmbeddingIndex struct {
	items []*Item
	norms []float64
	byID  map[int]int
	dim   int
}

// BuildEmbeddingIndex 由语料构建向量索引，仅纳入带向量的条目。
// 维度一致性已在语料构建时校验，这里直接信任。
func BuildEmbeddingIndex(corpus *Corpus) *EmbeddingIndex {
	idx := &EmbeddingIndex{
		byID: make(map[int]int),
		dim:  corpus.Dimension(),
	}
	for _, item := range corpus.Items() {
		if !item.HasEmbedding() {
			continue
		}
		idx.byID[item.ID] = len(idx.items)
		idx.items = append(idx.items, item)
		idx.norms = append(idx.norms, vecNorm(item.Embedding))
	}
	return idx
}

// Len 索引中的向量数
func (x *EmbeddingIndex) Len() int {
	return len(x.items)
}

// Contains 条目是否进入了索引
func (x *EmbeddingIndex) Contains(id int) bool {
	_, ok := x.byID[id]
	return ok
}

// Query 返回与指定条目向量最相似的前 K 个候选（排除自身）。
// 得分相同按载入顺序保持稳定；零范数向量对所有候选记 0 分。
func (x *EmbeddingIndex) Query(itemID, k int) []ScoredItem {
	pos, ok := x.byID[itemID]
	if !ok || k <= 0 {
		return nil
	}
	base := x.items[pos].Embedding
	baseNorm := x.norms[pos]

	scored := make([]ScoredItem, 0, len(x.items)-1)
	for i, item := range x.items {
		if i == pos {
			continue
		}
		score := 0.0
		if baseNorm != 0 && x.norms[i] != 0 {
			score = dot(base, item.Embedding) / (baseNorm * x.norms[i])
		}
		scored = append(scored, ScoredItem{Item: item, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity 两个等长稠密向量的余弦相似度，零向量记 0
func CosineSimilarity(a, b []float64) float64 {
	na, nb := vecNorm(a), vecNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func vecNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
