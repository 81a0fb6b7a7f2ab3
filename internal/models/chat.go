package models

// Message is a single turn in a conversation passed to the Q&A operations.
// Role is "user", "assistant" or "system"; system messages are lifted into
// the provider's system-instruction slot.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
