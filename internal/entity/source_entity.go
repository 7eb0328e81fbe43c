package entity

// Passage is one ranked retrieval result handed back by the search
// collaborator. The pipeline treats retrieval as a black box returning these.
type Passage struct {
	Id            string
	Digest        string
	Locale        string
	Title         string
	Description   string
	HeadingPath   string
	BasePath      string
	ExactPath     string
	Content       string
	Score         float64
	WeightedScore float64
}

// Source is one retrieved passage attached to an answer. Relevancy is the
// rank within the result set (0 = most relevant). Used is true only when the
// composer reports the passage was cited.
type Source struct {
	Relevancy     int     `json:"relevancy"`
	PassageId     string  `json:"passage_id"`
	Title         string  `json:"title"`
	HeadingPath   string  `json:"heading_path"`
	BasePath      string  `json:"base_path"`
	ExactPath     string  `json:"exact_path"`
	Locale        string  `json:"locale"`
	Score         float64 `json:"score"`
	WeightedScore float64 `json:"weighted_score"`
	Used          bool    `json:"used"`
}

// SourceFromPassage builds the initial, unused source for a passage at the
// given relevancy rank.
func SourceFromPassage(rank int, p Passage) Source {
	return Source{
		Relevancy:     rank,
		PassageId:     p.Id,
		Title:         p.Title,
		HeadingPath:   p.HeadingPath,
		BasePath:      p.BasePath,
		ExactPath:     p.ExactPath,
		Locale:        p.Locale,
		Score:         p.Score,
		WeightedScore: p.WeightedScore,
	}
}
