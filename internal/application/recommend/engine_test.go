package recommend

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommend-api/pkg/errors"
)

func testItems() []*Item {
	return []*Item{
		NewItem(ItemParams{
			ID: 1, Title: "Star Wars", Overview: "galactic rebellion against the empire",
			Rating: 8.6, VoteCount: 6000,
			Genres: []string{"Sci-Fi", "Adventure"}, Actors: []string{"Mark", "Carrie"},
			TitleTokens: []string{"star", "wars"}, Embedding: []float64{1, 0, 0},
		}),
		NewItem(ItemParams{
			ID: 2, Title: "Star Trek", Overview: "starship crew explores the galaxy",
			Rating: 8.0, VoteCount: 4000,
			Genres: []string{"Sci-Fi"}, Actors: []string{"William"},
			TitleTokens: []string{"star", "trek"}, Embedding: []float64{0.9, 0.1, 0},
		}),
		NewItem(ItemParams{
			ID: 3, Title: "Notting Hill", Overview: "a bookshop owner falls in love",
			Rating: 7.1, VoteCount: 1500,
			Genres: []string{"Romance", "Comedy"}, Actors: []string{"Hugh", "Julia"},
			TitleTokens: []string{"notting", "hill"}, Embedding: []float64{0, 1, 0},
		}),
		// 缺简介、缺向量、缺类型和标题词的条目
		NewItem(ItemParams{ID: 4, Title: "Untitled", Rating: 5.0, VoteCount: 10}),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Options{DefaultLimit: 10})
	require.NoError(t, e.Rebuild(context.Background(), testItems()))
	return e
}

func TestEngineNotLoaded(t *testing.T) {
	e := NewEngine(Options{})

	_, err := e.Recommend(context.Background(), 1, StrategyComposite, 5)
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeCorpusNotLoaded, appErr.Code)

	_, err = e.GetItem(1)
	require.Error(t, err)
	assert.False(t, e.Loaded())
	assert.Equal(t, 0, e.Len())
}

func TestEngineUnknownItem(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recommend(context.Background(), 999, StrategyComposite, 5)
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeMovieNotFound, appErr.Code)
}

func TestEngineGenerationIncrements(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, uint64(0), e.Generation())

	require.NoError(t, e.Rebuild(context.Background(), testItems()))
	assert.Equal(t, uint64(1), e.Generation())
	assert.Equal(t, 4, e.Len())

	require.NoError(t, e.Rebuild(context.Background(), testItems()[:2]))
	assert.Equal(t, uint64(2), e.Generation())
	assert.Equal(t, 2, e.Len())
}

func TestEngineRebuildDimensionMismatch(t *testing.T) {
	e := NewEngine(Options{})
	err := e.Rebuild(context.Background(), []*Item{
		NewItem(ItemParams{ID: 1, Embedding: []float64{1, 0}}),
		NewItem(ItemParams{ID: 2, Embedding: []float64{1, 0, 0}}),
	})
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeDimensionMismatch, appErr.Code)
	assert.False(t, e.Loaded())
}

func TestEngineAllStrategies(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			result, err := e.Recommend(ctx, 1, strategy, 10)
			require.NoError(t, err)
			assert.Equal(t, strategy, result.Strategy)
			assert.False(t, result.Skipped())

			for i := 1; i < len(result.Items); i++ {
				assert.GreaterOrEqual(t, result.Items[i-1].Score, result.Items[i].Score)
			}
			for _, s := range result.Items {
				assert.NotEqual(t, 1, s.Item.ID)
			}
		})
	}
}

func TestEngineSkipReasons(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		strategy Strategy
		want     SkipReason
	}{
		{StrategyLexical, SkipNoOverview},
		{StrategyEmbedding, SkipNoEmbedding},
		{StrategyGenreOverlap, SkipNoGenres},
		{StrategyTitleOverlap, SkipNoTitle},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			result, err := e.Recommend(ctx, 4, tt.strategy, 10)
			require.NoError(t, err)
			assert.True(t, result.Skipped())
			assert.Equal(t, tt.want, result.Skip)
			assert.Empty(t, result.Items)
		})
	}

	// 综合策略没有前置条件
	result, err := e.Recommend(ctx, 4, StrategyComposite, 10)
	require.NoError(t, err)
	assert.False(t, result.Skipped())
	assert.NotEmpty(t, result.Items)
}

func TestEngineSingleItemCorpus(t *testing.T) {
	e := NewEngine(Options{})
	require.NoError(t, e.Rebuild(context.Background(), testItems()[:1]))

	result, err := e.Recommend(context.Background(), 1, StrategyComposite, 10)
	require.NoError(t, err)
	assert.Equal(t, SkipEmptyCorpus, result.Skip)
}

func TestEngineEmbeddingRanking(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Recommend(context.Background(), 1, StrategyEmbedding, 10)
	require.NoError(t, err)
	require.Len(t, result.Items, 2) // ID 4 没有向量
	assert.Equal(t, 2, result.Items[0].Item.ID)
	assert.Equal(t, 3, result.Items[1].Item.ID)
}

func TestEngineCompositeBreakdown(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Recommend(context.Background(), 1, StrategyComposite, 10)
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)

	// 同类型的 Star Trek 应排在首位
	assert.Equal(t, 2, result.Items[0].Item.ID)
	require.NotNil(t, result.Items[0].Breakdown)
	assert.Equal(t, 1, result.Items[0].Breakdown.GenreOverlap)
	assert.Equal(t, 1, result.Items[0].Breakdown.TitleWordOverlap)
}

func TestEngineDefaultLimit(t *testing.T) {
	e := NewEngine(Options{DefaultLimit: 1})
	require.NoError(t, e.Rebuild(context.Background(), testItems()))

	result, err := e.Recommend(context.Background(), 1, StrategyComposite, 0)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestEngineRecommendAll(t *testing.T) {
	e := newTestEngine(t)

	results, err := e.RecommendAll(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, results, len(Strategies))
	for _, strategy := range Strategies {
		r, ok := results[strategy]
		require.True(t, ok)
		assert.Equal(t, strategy, r.Strategy)
		assert.LessOrEqual(t, len(r.Items), 3)
	}
}

func TestEngineRandomSample(t *testing.T) {
	e := newTestEngine(t)

	assert.Len(t, e.Random(2), 2)
	assert.Len(t, e.Random(100), 4)
	assert.Nil(t, e.Random(0))

	seen := make(map[int]struct{})
	for _, it := range e.Random(4) {
		seen[it.ID] = struct{}{}
	}
	assert.Len(t, seen, 4)

	empty := NewEngine(Options{})
	assert.Nil(t, empty.Random(3))
}

func TestEngineLexicalRetryAfterCanceledBuild(t *testing.T) {
	e := newTestEngine(t)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	// 请求取消只作废这一次构建
	_, err := e.Recommend(canceled, 1, StrategyLexical, 5)
	require.Error(t, err)

	// 下一次查询重新构建并成功
	result, err := e.Recommend(context.Background(), 1, StrategyLexical, 5)
	require.NoError(t, err)
	assert.False(t, result.Skipped())
	assert.NotEmpty(t, result.Items)
}

func TestEngineEmbeddingSoleVector(t *testing.T) {
	e := NewEngine(Options{})
	require.NoError(t, e.Rebuild(context.Background(), []*Item{
		NewItem(ItemParams{ID: 1, Title: "Solo", Embedding: []float64{1, 0}}),
		NewItem(ItemParams{ID: 2, Title: "Bare"}),
		NewItem(ItemParams{ID: 3, Title: "Plain"}),
	}))

	// 只有基准条目自己带向量，按缺向量处理而不是"无匹配"
	result, err := e.Recommend(context.Background(), 1, StrategyEmbedding, 5)
	require.NoError(t, err)
	assert.Equal(t, SkipNoEmbedding, result.Skip)
	assert.Empty(t, result.Items)
}

func TestEngineEmptySnapshotRebuild(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Rebuild(context.Background(), nil))

	for _, strategy := range Strategies {
		result, err := e.Recommend(context.Background(), 1, strategy, 5)
		require.NoError(t, err)
		assert.Equal(t, SkipEmptyCorpus, result.Skip)
	}
}

func TestEngineConcurrentQueriesDuringRebuild(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := e.Recommend(ctx, 1, StrategyComposite, 5)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Rebuild(ctx, testItems()))
		}()
	}
	wg.Wait()

	assert.True(t, e.Loaded())
}

func TestEngineLexicalLazyInit(t *testing.T) {
	items := make([]*Item, 0, 20)
	for i := 1; i <= 20; i++ {
		items = append(items, NewItem(ItemParams{
			ID:       i,
			Overview: fmt.Sprintf("document number %d about shared topic", i),
		}))
	}

	e := NewEngine(Options{LexicalMaxDocs: 10})
	require.NoError(t, e.Rebuild(context.Background(), items))

	// 上限内的条目可查
	result, err := e.Recommend(context.Background(), 1, StrategyLexical, 5)
	require.NoError(t, err)
	assert.False(t, result.Skipped())
	assert.Len(t, result.Items, 5)

	// 被上限挡在索引外的条目按缺简介处理
	result, err = e.Recommend(context.Background(), 15, StrategyLexical, 5)
	require.NoError(t, err)
	assert.Equal(t, SkipNoOverview, result.Skip)
}
