package recommend

import "sort"

// rankComposite 对基准条目逐一计算多信号综合分并取前 K。
// maxCandidates > 0 时按载入顺序截断候选池；稳定排序保证同分候选
// 维持载入顺序。
func rankComposite(corpus *Corpus, base *Item, k, maxCandidates int) []ScoredItem {
	if k <= 0 {
		return nil
	}
	baseFeat := extractFeatures(base)

	candidates := corpus.Items()
	if maxCandidates > 0 && len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	scored := make([]ScoredItem, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ID == base.ID {
			continue
		}
		b := scoreOverlap(baseFeat, extractFeatures(cand))
		scored = append(scored, ScoredItem{Item: cand, Score: b.Composite, Breakdown: &b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// rankTokenOverlap 按单一词元集合交集大小排序，交集为零的候选直接剔除。
// selector 决定参与比较的集合（标题词或类型）。
func rankTokenOverlap(corpus *Corpus, base *Item, k int, selector func(*Item) TokenSet) []ScoredItem {
	if k <= 0 {
		return nil
	}
	baseSet := selector(base)
	if len(baseSet) == 0 {
		return nil
	}

	scored := make([]ScoredItem, 0)
	for _, cand := range corpus.Items() {
		if cand.ID == base.ID {
			continue
		}
		overlap := baseSet.IntersectCount(selector(cand))
		if overlap == 0 {
			continue
		}
		scored = append(scored, ScoredItem{Item: cand, Score: float64(overlap)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
