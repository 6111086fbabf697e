package rag

import "sort"

// RefusalText is returned as the answer whenever no match is accepted.
const RefusalText = "제공된 Q&A 데이터에서 적절한 답변을 찾지 못했습니다."

// QueryResult is the outcome of one pipeline run. SourceQuestion and Score
// are nil only when the index returned no matches.
type QueryResult struct {
	Found          bool     `json:"found"`
	Answer         string   `json:"answer"`
	SourceQuestion *string  `json:"sourceQuestion"`
	Score          *float64 `json:"score"`

	// RewrittenQuery is the text that was embedded.
	RewrittenQuery string `json:"-"`
}

// Select picks the highest-scoring match and accepts it if its score is at
// least threshold and it carries an answer. Ties keep index order. The input
// slice is not modified.
func Select(matches []Match, threshold float64) QueryResult {
	if len(matches) == 0 {
		return QueryResult{Found: false, Answer: RefusalText}
	}

	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	best := sorted[0]
	score := best.Score
	res := QueryResult{
		SourceQuestion: best.Question,
		Score:          &score,
	}
	if best.Answer == nil || best.Score < threshold {
		res.Answer = RefusalText
		return res
	}
	res.Found = true
	res.Answer = *best.Answer
	return res
}
