package recommend

import "movie-recommend-api/pkg/errors"

// Strategy 推荐策略
type Strategy string

const (
	StrategyLexical      Strategy = "lexical"
	StrategyEmbedding    Strategy = "embedding"
	StrategyComposite    Strategy = "composite"
	StrategyTitleOverlap Strategy = "title_overlap"
	StrategyGenreOverlap Strategy = "genre_overlap"
)

// Strategies 全部策略（按详情页展示顺序）
var Strategies = []Strategy{
	StrategyLexical,
	StrategyComposite,
	StrategyTitleOverlap,
	StrategyGenreOverlap,
	StrategyEmbedding,
}

// ParseStrategy 解析策略名
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyLexical, StrategyEmbedding, StrategyComposite, StrategyTitleOverlap, StrategyGenreOverlap:
		return Strategy(s), nil
	default:
		return "", errors.ErrUnknownStrategy.WithDetail(s)
	}
}

// SkipReason 策略前置条件不满足时的类型化原因。
// 属于结果数据而非错误：多策略编排的调用方据此降级到其它策略。
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNoOverview  SkipReason = "no_overview"
	SkipNoEmbedding SkipReason = "no_embedding"
	SkipNoGenres    SkipReason = "no_genres"
	SkipNoTitle     SkipReason = "no_titlewords"
	SkipEmptyCorpus SkipReason = "empty_corpus"
)

// ScoredItem 单个候选及其得分
type ScoredItem struct {
	Item  *Item
	Score float64
	// Breakdown 仅综合策略填充
	Breakdown *Breakdown
}

// RankedResult 一次推荐查询的结果。
// Items 按得分严格非增排列，长度不超过请求的 K。
type RankedResult struct {
	Strategy Strategy
	Items    []ScoredItem
	Skip     SkipReason
}

// Skipped 是否因前置条件不满足而为空
func (r RankedResult) Skipped() bool {
	return r.Skip != SkipNone
}
