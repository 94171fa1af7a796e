package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"movie-recommend-api/pkg/errors"
	"movie-recommend-api/pkg/logger"
	"movie-recommend-api/pkg/metrics"
)

var tracer = otel.Tracer("recommend")

// Options 引擎参数
type Options struct {
	// LexicalMaxDocs 词汇索引收录文档上限，0 表示不限
	LexicalMaxDocs int
	// CompositeMaxCandidates 综合打分候选池上限，0 表示不限
	CompositeMaxCandidates int
	// DefaultLimit K <= 0 时使用的默认返回数
	DefaultLimit int
}

// snapshot 一代完整索引状态。
// 语料与向量索引在重建时构好；词汇索引代价高且非必经路径，
// 留到首次词汇查询时构建，成功后同代内复用。
type snapshot struct {
	corpus    *Corpus
	embedding *EmbeddingIndex

	lexBuilds singleflight.Group
	lex       atomic.Pointer[LexicalIndex]
}

// lexical 惰性取词汇索引，并发的首次查询合并为一次构建。
// 只缓存构建成功的索引：首次查询的请求被取消时构建随之放弃，
// 错误不会被记住，下一次查询重新触发构建。
func (s *snapshot) lexical(ctx context.Context, maxDocs int) (*LexicalIndex, error) {
	if idx := s.lex.Load(); idx != nil {
		return idx, nil
	}
	v, err, _ := s.lexBuilds.Do("lexical", func() (interface{}, error) {
		if idx := s.lex.Load(); idx != nil {
			return idx, nil
		}
		start := time.Now()
		idx, err := BuildLexicalIndex(ctx, s.corpus, maxDocs)
		if err != nil {
			logger.Error(ctx, "词汇索引构建失败", err)
			return nil, err
		}
		s.lex.Store(idx)
		metrics.IndexDocuments.WithLabelValues("lexical").Set(float64(idx.Len()))
		logger.Info(ctx, "词汇索引构建完成",
			"documents", idx.Len(),
			"duration", time.Since(start).String())
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LexicalIndex), nil
}

// Engine 多策略推荐引擎。
// 查询只读当前快照，重建在旁路构好新快照后原子替换，两者互不阻塞；
// 并发重建通过 singleflight 合并，任一时刻至多一次在途。
type Engine struct {
	opts       Options
	snap       atomic.Pointer[snapshot]
	rebuilds   singleflight.Group
	generation atomic.Uint64
}

// NewEngine 创建未载入语料的引擎
func NewEngine(opts Options) *Engine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	return &Engine{opts: opts}
}

// Rebuild 以给定条目集整体重建索引并原子切换。
// 同时到达的重建请求合并为一次执行，共享同一结果。
func (e *Engine) Rebuild(ctx context.Context, items []*Item) error {
	_, err, _ := e.rebuilds.Do("rebuild", func() (interface{}, error) {
		ctx, span := tracer.Start(ctx, "engine.rebuild")
		defer span.End()

		start := time.Now()
		corpus, err := NewCorpus(items)
		if err != nil {
			metrics.IndexRebuildTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			metrics.IndexRebuildTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		embIdx := BuildEmbeddingIndex(corpus)

		e.snap.Store(&snapshot{corpus: corpus, embedding: embIdx})
		gen := e.generation.Add(1)

		metrics.IndexRebuildTotal.WithLabelValues("ok").Inc()
		metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
		metrics.IndexDocuments.WithLabelValues("corpus").Set(float64(corpus.Len()))
		metrics.IndexDocuments.WithLabelValues("embedding").Set(float64(embIdx.Len()))

		span.SetAttributes(
			attribute.Int("corpus.size", corpus.Len()),
			attribute.Int64("corpus.generation", int64(gen)),
		)
		logger.Info(ctx, "语料快照已切换",
			"generation", gen,
			"items", corpus.Len(),
			"embeddings", embIdx.Len(),
			"dimension", corpus.Dimension(),
			"duration", time.Since(start).String())
		return nil, nil
	})
	return err
}

// Generation 当前快照代号，每次成功重建递增。
// 调用方可将其编入缓存键，旧代缓存随之自然失效。
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

// Loaded 是否已至少成功重建过一次
func (e *Engine) Loaded() bool {
	return e.snap.Load() != nil
}

// Len 当前语料条目数，未载入时为 0
func (e *Engine) Len() int {
	if s := e.snap.Load(); s != nil {
		return s.corpus.Len()
	}
	return 0
}

// GetItem 按 ID 取当前快照中的条目
func (e *Engine) GetItem(id int) (*Item, error) {
	s := e.snap.Load()
	if s == nil {
		return nil, errors.ErrCorpusNotLoaded
	}
	item, ok := s.corpus.Get(id)
	if !ok {
		return nil, errors.ErrMovieNotFound.WithDetail(fmt.Sprintf("id %d", id))
	}
	return item, nil
}

// Items 当前快照全部条目（只读），未载入时为 nil
func (e *Engine) Items() []*Item {
	if s := e.snap.Load(); s != nil {
		return s.corpus.Items()
	}
	return nil
}

// Random 从当前快照随机取样至多 k 个条目
func (e *Engine) Random(k int) []*Item {
	s := e.snap.Load()
	if s == nil || k <= 0 {
		return nil
	}
	items := s.corpus.Items()
	if k > len(items) {
		k = len(items)
	}
	sample := make([]*Item, 0, k)
	for _, i := range rand.Perm(len(items))[:k] {
		sample = append(sample, items[i])
	}
	return sample
}

// Recommend 按指定策略返回与基准条目最相似的前 K 个候选。
// 基准条目不存在或引擎未载入返回硬错误；策略前置条件不满足
// （缺简介/缺向量/缺类型等）返回带原因的空结果。
func (e *Engine) Recommend(ctx context.Context, itemID int, strategy Strategy, k int) (RankedResult, error) {
	ctx, span := tracer.Start(ctx, "engine.recommend")
	defer span.End()
	span.SetAttributes(
		attribute.Int("item.id", itemID),
		attribute.String("strategy", string(strategy)),
		attribute.Int("k", k),
	)

	start := time.Now()
	result, err := e.recommend(ctx, itemID, strategy, k)
	metrics.RecommendDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.RecommendTotal.WithLabelValues(string(strategy), "error").Inc()
	case result.Skipped():
		metrics.RecommendTotal.WithLabelValues(string(strategy), "skipped").Inc()
	default:
		metrics.RecommendTotal.WithLabelValues(string(strategy), "ok").Inc()
	}
	return result, err
}

func (e *Engine) recommend(ctx context.Context, itemID int, strategy Strategy, k int) (RankedResult, error) {
	if k <= 0 {
		k = e.opts.DefaultLimit
	}
	result := RankedResult{Strategy: strategy}

	s := e.snap.Load()
	if s == nil {
		return result, errors.ErrCorpusNotLoaded
	}
	// 空快照对任何 ID 都报空语料，而不是未找到
	if s.corpus.Len() == 0 {
		result.Skip = SkipEmptyCorpus
		return result, nil
	}
	base, ok := s.corpus.Get(itemID)
	if !ok {
		return result, errors.ErrMovieNotFound.WithDetail(fmt.Sprintf("id %d", itemID))
	}
	if s.corpus.Len() <= 1 {
		result.Skip = SkipEmptyCorpus
		return result, nil
	}

	switch strategy {
	case StrategyLexical:
		if !base.HasOverview() {
			result.Skip = SkipNoOverview
			return result, nil
		}
		lex, err := s.lexical(ctx, e.opts.LexicalMaxDocs)
		if err != nil {
			return result, errors.New(errors.CodeRebuildFailed, "lexical index build failed").WithError(err)
		}
		if !lex.Contains(base.ID) {
			// 截断上限把基准条目挡在了索引之外
			result.Skip = SkipNoOverview
			return result, nil
		}
		result.Items = lex.Query(base.ID, k)

	case StrategyEmbedding:
		// 基准条目没有向量，或全语料只有它自己带向量，都按缺向量处理
		if !base.HasEmbedding() || s.embedding.Len() <= 1 {
			result.Skip = SkipNoEmbedding
			return result, nil
		}
		result.Items = s.embedding.Query(base.ID, k)

	case StrategyComposite:
		result.Items = rankComposite(s.corpus, base, k, e.opts.CompositeMaxCandidates)

	case StrategyTitleOverlap:
		if len(base.TitleTokens) == 0 {
			result.Skip = SkipNoTitle
			return result, nil
		}
		result.Items = rankTokenOverlap(s.corpus, base, k, func(it *Item) TokenSet { return it.TitleTokens })

	case StrategyGenreOverlap:
		if len(base.genreSet) == 0 {
			result.Skip = SkipNoGenres
			return result, nil
		}
		result.Items = rankTokenOverlap(s.corpus, base, k, func(it *Item) TokenSet { return it.genreSet })

	default:
		return result, errors.ErrUnknownStrategy.WithDetail(string(strategy))
	}

	return result, nil
}

// RecommendAll 按展示顺序跑全部策略，供详情页一次取齐。
// 单个策略被跳过不影响其它策略。
func (e *Engine) RecommendAll(ctx context.Context, itemID, k int) (map[Strategy]RankedResult, error) {
	results := make(map[Strategy]RankedResult, len(Strategies))
	for _, strategy := range Strategies {
		r, err := e.Recommend(ctx, itemID, strategy, k)
		if err != nil {
			return nil, err
		}
		results[strategy] = r
	}
	return results, nil
}
