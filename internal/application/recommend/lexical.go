package recommend

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// sparseVec 稀疏 TF-IDF 向量，按词项 ID 升序存储
type sparseVec struct {
	terms   []int
	weights []float64
}

// lexicalDoc 进入词汇索引的单篇文档
type lexicalDoc struct {
	item *Item
	vec  sparseVec
	norm float64
}

// LexicalIndex 基于简介文本的 TF-IDF 余弦相似索引。
// 构建完成后只读，可被任意多个查询并发共享。
type LexicalIndex struct {
	vocab map[string]int
	docs  []lexicalDoc
	byID  map[int]int
}

// BuildLexicalIndex 全量构建词汇索引。
// 只纳入带非空简介的条目；maxDocs > 0 时超出部分按载入顺序截断。
// 分词阶段并行执行，ctx 取消时尽快放弃构建。
func BuildLexicalIndex(ctx context.Context, corpus *Corpus, maxDocs int) (*LexicalIndex, error) {
	eligible := make([]*Item, 0, corpus.Len())
	for _, item := range corpus.Items() {
		if item.HasOverview() {
			eligible = append(eligible, item)
		}
	}
	if maxDocs > 0 && len(eligible) > maxDocs {
		eligible = eligible[:maxDocs]
	}

	// 并行分词，结果位置与 eligible 对齐以保持确定性
	tokenized := make([][]string, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, item := range eligible {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokenized[i] = Normalize(item.Overview)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 第一遍：建词表并统计文档频率
	vocab := make(map[string]int)
	docFreq := make([]int, 0)
	for _, tokens := range tokenized {
		seen := make(map[int]struct{}, len(tokens))
		for _, tok := range tokens {
			id, ok := vocab[tok]
			if !ok {
				id = len(vocab)
				vocab[tok] = id
				docFreq = append(docFreq, 0)
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				docFreq[id]++
			}
		}
	}

	// 第二遍：tf * log2(N/df) 加权并预计算范数
	n := float64(len(eligible))
	idx := &LexicalIndex{
		vocab: vocab,
		docs:  make([]lexicalDoc, 0, len(eligible)),
		byID:  make(map[int]int, len(eligible)),
	}
	for i, item := range eligible {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tf := make(map[int]int, len(tokenized[i]))
		for _, tok := range tokenized[i] {
			tf[vocab[tok]]++
		}
		terms := make([]int, 0, len(tf))
		for termID := range tf {
			terms = append(terms, termID)
		}
		sort.Ints(terms)

		weights := make([]float64, len(terms))
		sumSq := 0.0
		for j, termID := range terms {
			w := float64(tf[termID]) * math.Log2(n/float64(docFreq[termID]))
			weights[j] = w
			sumSq += w * w
		}

		idx.byID[item.ID] = len(idx.docs)
		idx.docs = append(idx.docs, lexicalDoc{
			item: item,
			vec:  sparseVec{terms: terms, weights: weights},
			norm: math.Sqrt(sumSq),
		})
	}

	return idx, nil
}

// Len 索引中的文档数
func (x *LexicalIndex) Len() int {
	return len(x.docs)
}

// Contains 条目是否进入了索引
func (x *LexicalIndex) Contains(id int) bool {
	_, ok := x.byID[id]
	return ok
}

// Query 返回与指定条目简介最相似的前 K 个候选（排除自身）。
// 得分相同按条目 ID 升序，保证结果可复现。
// 零范数的基准向量对所有候选记 0 分，仍返回按 ID 排好的列表。
func (x *LexicalIndex) Query(itemID, k int) []ScoredItem {
	pos, ok := x.byID[itemID]
	if !ok || k <= 0 {
		return nil
	}
	base := x.docs[pos]

	scored := make([]ScoredItem, 0, len(x.docs)-1)
	for i := range x.docs {
		if i == pos {
			continue
		}
		cand := &x.docs[i]
		score := cosineSparse(base.vec, cand.vec, base.norm, cand.norm)
		scored = append(scored, ScoredItem{Item: cand.item, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item.ID < scored[j].Item.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// cosineSparse 两个升序稀疏向量的余弦相似度，零范数向量记 0
func cosineSparse(a, b sparseVec, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	dot := 0.0
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			dot += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	return dot / (normA * normB)
}
