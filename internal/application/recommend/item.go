package recommend

import "strings"

// minTitleTokenLen 标题词元最小长度（更短的词区分度过低）
const minTitleTokenLen = 3

// ItemParams 条目构建参数
type ItemParams struct {
	ID          int
	Title       string
	Overview    string
	ReleaseDate string
	PosterPath  string
	Rating      float64
	VoteCount   int
	Genres      []string
	Actors      []string
	TitleTokens []string
	// Embedding 外部生成的稠密向量，nil 表示缺失
	Embedding []float64
}

// Item 语料中的一个条目，构建完成后只读
type Item struct {
	ID          int
	Title       string
	Overview    string
	ReleaseDate string
	PosterPath  string
	Rating      float64
	VoteCount   int
	Genres      []string
	Actors      []string
	TitleTokens TokenSet
	Embedding   []float64

	genreSet TokenSet
	actorSet TokenSet
}

// NewItem 构建条目：类型/演员统一小写进集合，标题词做长度过滤。
// 评分与票数缺省为 0，后续由评分公式按"最不相似"处理。
func NewItem(p ItemParams) *Item {
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			genres = append(genres, g)
		}
	}

	titleTokens := make(TokenSet, len(p.TitleTokens))
	for _, tok := range p.TitleTokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len([]rune(tok)) < minTitleTokenLen {
			continue
		}
		titleTokens[tok] = struct{}{}
	}

	return &Item{
		ID:          p.ID,
		Title:       p.Title,
		Overview:    p.Overview,
		ReleaseDate: p.ReleaseDate,
		PosterPath:  p.PosterPath,
		Rating:      p.Rating,
		VoteCount:   p.VoteCount,
		Genres:      genres,
		Actors:      p.Actors,
		TitleTokens: titleTokens,
		Embedding:   p.Embedding,
		genreSet:    NewTokenSet(genres),
		actorSet:    NewTokenSet(p.Actors),
	}
}

// HasOverview 是否带非空简介
func (it *Item) HasOverview() bool {
	return strings.TrimSpace(it.Overview) != ""
}

// HasEmbedding 是否带稠密向量
func (it *Item) HasEmbedding() bool {
	return len(it.Embedding) > 0
}
