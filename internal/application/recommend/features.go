package recommend

import "strings"

// TokenSet 规整化词元集合
type TokenSet map[string]struct{}

// NewTokenSet 由词元序列构建集合（去空、转小写）
func NewTokenSet(tokens []string) TokenSet {
	if len(tokens) == 0 {
		return TokenSet{}
	}
	set := make(TokenSet, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// NewTokenSetFromDelimited 由逗号分隔字符串构建集合
func NewTokenSetFromDelimited(s string) TokenSet {
	if strings.TrimSpace(s) == "" {
		return TokenSet{}
	}
	return NewTokenSet(strings.Split(s, ","))
}

// Contains 判断词元是否存在
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// IntersectCount 计算与另一个集合的交集大小
func (s TokenSet) IntersectCount(other TokenSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	count := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			count++
		}
	}
	return count
}

// Features 单个条目参与相似度计算的全部特征
type Features struct {
	GenreSet         TokenSet
	ActorSet         TokenSet
	TitleTokenSet    TokenSet
	OverviewTokenSet TokenSet
	Rating           float64
	VoteCount        int
}

// extractFeatures 提取条目特征。
// 类型/演员/标题词集合在条目构建时已经规整化，这里直接复用；
// 简介词元使用频率较低，按查询即时切分。
func extractFeatures(item *Item) Features {
	return Features{
		GenreSet:         item.genreSet,
		ActorSet:         item.actorSet,
		TitleTokenSet:    item.TitleTokens,
		OverviewTokenSet: NewTokenSet(Normalize(item.Overview)),
		Rating:           item.Rating,
		VoteCount:        item.VoteCount,
	}
}
