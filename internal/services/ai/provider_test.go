package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/common"
)

func newTestFactory() *ProviderFactory {
	return NewProviderFactory(
		&common.GeminiConfig{APIKey: "test-key", Model: "gemini-3-flash-preview", Timeout: "2m", RateLimit: "4s"},
		&common.ClaudeConfig{APIKey: "test-key", Model: "claude-haiku-3-5-20241022", MaxTokens: 8192, Timeout: "2m", RateLimit: "1s"},
		&common.LLMConfig{DefaultProvider: common.LLMProviderGemini},
		nil,
		common.GetLogger(),
	)
}

// Lazy client creation is shared by HTTP handlers and the refresh fan-out,
// so first use from many goroutines must yield a single cached client.
func TestGetGeminiClientConcurrentFirstUse(t *testing.T) {
	factory := newTestFactory()
	ctx := context.Background()

	const callers = 8
	clients := make([]any, callers)
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := factory.getGeminiClient(ctx)
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}
	wg.Wait()

	require.NotNil(t, clients[0])
	for i := 1; i < callers; i++ {
		assert.Same(t, clients[0], clients[i], "every caller must observe the same cached client")
	}
}

func TestGetClaudeClientConcurrentFirstUse(t *testing.T) {
	t.Setenv("AUGUR_CLAUDE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	factory := newTestFactory()
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := factory.getClaudeClient(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "test-key", factory.claudeAPIKey)
}

func TestGetGeminiClientRetriesAfterMissingKey(t *testing.T) {
	t.Setenv("AUGUR_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	factory := newTestFactory()
	factory.geminiConfig.APIKey = ""
	ctx := context.Background()

	_, err := factory.getGeminiClient(ctx)
	require.Error(t, err)

	// A failed resolution must not poison the cache; a key arriving later
	// is picked up on the next call.
	factory.geminiConfig.APIKey = "late-key"
	client, err := factory.getGeminiClient(ctx)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
