package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCorpus(t *testing.T, items ...*Item) *Corpus {
	t.Helper()
	corpus, err := NewCorpus(items)
	require.NoError(t, err)
	return corpus
}

func TestLexicalIndexOnlyOverviewDocs(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "space adventure crew"}),
		NewItem(ItemParams{ID: 2, Overview: ""}),
		NewItem(ItemParams{ID: 3, Overview: "romance in paris"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains(1))
	assert.False(t, idx.Contains(2))
	assert.True(t, idx.Contains(3))
}

func TestLexicalQueryIdenticalOverviews(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "space adventure crew"}),
		NewItem(ItemParams{ID: 2, Overview: "space adventure crew"}),
		NewItem(ItemParams{ID: 3, Overview: "romance paris love"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	got := idx.Query(1, 10)
	require.Len(t, got, 2)

	// 完全相同的简介余弦相似度为 1
	assert.Equal(t, 2, got[0].Item.ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	// 无共同词汇的候选得 0
	assert.Equal(t, 3, got[1].Item.ID)
	assert.InDelta(t, 0.0, got[1].Score, 1e-9)
}

func TestLexicalQueryExcludesSelf(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "alpha beta gamma"}),
		NewItem(ItemParams{ID: 2, Overview: "alpha beta delta"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	got := idx.Query(1, 10)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Item.ID)
}

func TestLexicalQueryTieBreakByID(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 10, Overview: "wizards and dragons"}),
		NewItem(ItemParams{ID: 7, Overview: "submarine warfare drama"}),
		NewItem(ItemParams{ID: 3, Overview: "cooking competition show"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	// 三篇简介互不相交，全部并列 0 分，按 ID 升序
	got := idx.Query(10, 10)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Item.ID)
	assert.Equal(t, 7, got[1].Item.ID)
}

func TestLexicalQueryTruncatesToK(t *testing.T) {
	items := []*Item{
		NewItem(ItemParams{ID: 1, Overview: "shared words everywhere"}),
		NewItem(ItemParams{ID: 2, Overview: "shared words somewhere"}),
		NewItem(ItemParams{ID: 3, Overview: "shared words anywhere"}),
		NewItem(ItemParams{ID: 4, Overview: "shared words nowhere"}),
	}
	corpus := buildCorpus(t, items...)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	got := idx.Query(1, 2)
	assert.Len(t, got, 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestLexicalMaxDocsCap(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "first overview"}),
		NewItem(ItemParams{ID: 2, Overview: "second overview"}),
		NewItem(ItemParams{ID: 3, Overview: "third overview"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 2)
	require.NoError(t, err)

	// 按载入顺序截断
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains(1))
	assert.True(t, idx.Contains(2))
	assert.False(t, idx.Contains(3))
}

func TestLexicalBuildCancelled(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "some overview text"}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildLexicalIndex(ctx, corpus, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLexicalQueryZeroNormBase(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 5, Overview: "!!! ???"}),
		NewItem(ItemParams{ID: 2, Overview: "space adventure"}),
		NewItem(ItemParams{ID: 9, Overview: "romance paris"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	// 纯标点简介的向量范数为零，所有候选记 0 分，按 ID 升序
	got := idx.Query(5, 10)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Item.ID)
	assert.Equal(t, 9, got[1].Item.ID)
	for _, s := range got {
		assert.Equal(t, 0.0, s.Score)
	}
}

func TestLexicalQueryUnknownID(t *testing.T) {
	corpus := buildCorpus(t,
		NewItem(ItemParams{ID: 1, Overview: "known document"}),
	)

	idx, err := BuildLexicalIndex(context.Background(), corpus, 0)
	require.NoError(t, err)

	assert.Nil(t, idx.Query(99, 10))
	assert.Nil(t, idx.Query(1, 0))
}
