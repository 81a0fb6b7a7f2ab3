package models

// Sentiment values emitted by analysis operations.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// AnalysisVector is one angle of analysis the model proposes for an asset
// (e.g. "Balance Sheet Strength", "Competitive Moat").
type AnalysisVector struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Rationale string `json:"rationale,omitempty"`
}

// AnalysisContent is the typed result of a single analysis vector or of the
// global synthesis. Summary, FullText and Sentiment are required; the
// pipeline rejects responses missing any of them rather than returning a
// partially-filled result.
type AnalysisContent struct {
	Summary       string   `json:"summary"`
	FullText      string   `json:"fullText"`
	Sentiment     string   `json:"sentiment"`
	LimitBuyPrice *float64 `json:"limitBuyPrice,omitempty"`
}

// Answer is the typed result of the Q&A operations. Citations are populated
// only for web-search grounded answers.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}
