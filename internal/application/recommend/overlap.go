package recommend

import "math"

// 综合打分权重与平滑常数，从原始系统原样沿用，为兼容性不做重调：
// 演员重合占主导，类型与评分次之，词汇/标题重合作为末位信号。
const (
	weightGenre     = 2.0
	weightActor     = 3.0
	weightRating    = 2.0
	weightVotes     = 1.5
	weightOverview  = 1.0
	weightTitleWord = 1.5

	votesSmoothing = 1000.0
)

// Breakdown 各子信号得分及综合分
type Breakdown struct {
	GenreOverlap     int     `json:"genre_overlap"`
	ActorOverlap     int     `json:"actor_overlap"`
	RatingScore      float64 `json:"rating_score"`
	VotesScore       float64 `json:"votes_score"`
	OverviewOverlap  int     `json:"overview_overlap"`
	TitleWordOverlap int     `json:"titleword_overlap"`
	Composite        float64 `json:"composite"`
}

// scoreOverlap 计算基准条目与候选条目之间的全部集合重合信号。
// 评分/票数缺失时双方默认为 0，由倒数公式自然落在"最不相似"一端。
func scoreOverlap(base, cand Features) Breakdown {
	b := Breakdown{
		GenreOverlap:     base.GenreSet.IntersectCount(cand.GenreSet),
		ActorOverlap:     base.ActorSet.IntersectCount(cand.ActorSet),
		RatingScore:      1 / (1 + math.Abs(base.Rating-cand.Rating)),
		VotesScore:       1 / (1 + math.Abs(float64(base.VoteCount-cand.VoteCount))/votesSmoothing),
		OverviewOverlap:  base.OverviewTokenSet.IntersectCount(cand.OverviewTokenSet),
		TitleWordOverlap: base.TitleTokenSet.IntersectCount(cand.TitleTokenSet),
	}

	b.Composite = float64(b.GenreOverlap)*weightGenre +
		float64(b.ActorOverlap)*weightActor +
		b.RatingScore*weightRating +
		b.VotesScore*weightVotes +
		float64(b.OverviewOverlap)*weightOverview +
		float64(b.TitleWordOverlap)*weightTitleWord

	return b
}
