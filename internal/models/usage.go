package models

// Usage captures token accounting for a single upstream generation call.
// Aggregation across concurrent calls is done by the caller after all calls
// settle, by reducing over the collected results.
type Usage struct {
	PromptTokens    int `json:"prompt_tokens"`
	CandidateTokens int `json:"candidate_tokens"`
	TotalTokens     int `json:"total_tokens"`
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:    u.PromptTokens + other.PromptTokens,
		CandidateTokens: u.CandidateTokens + other.CandidateTokens,
		TotalTokens:     u.TotalTokens + other.TotalTokens,
	}
}

// Citation is a grounding source returned by web-search backed operations.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
