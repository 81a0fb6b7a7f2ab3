package ai

import (
	"fmt"
	"strings"

	"github.com/ternarybob/augur/internal/models"
)

// Prompt builders for the research operations. Each returns a single
// self-contained prompt string with strict output-format instructions;
// structural enforcement is layered on via response schemas where the
// provider supports them.

const jsonOnlyInstruction = "Respond with valid JSON only. No markdown fences, no commentary before or after the JSON."

func identifyAssetsPrompt(query string) string {
	return fmt.Sprintf(`You are a financial data assistant. Identify the listed securities that best match the following user query.

Query: %q

Return up to 5 candidates ordered by relevance. For each candidate provide:
- "name": the full legal/trading name of the security
- "ticker": the exchange ticker code
- "exchange": the primary listing exchange code (e.g. ASX, NYSE, NASDAQ, LSE)
- "assetType": one of "equity", "etf", "fund", "bond", "commodity", "crypto"
- "currency": the ISO 4217 trading currency code
- "isin": the ISIN if known, otherwise an empty string

Output a JSON array of candidate objects. %s`, query, jsonOnlyInstruction)
}

func listVectorsPrompt(asset models.AssetCandidate) string {
	return fmt.Sprintf(`You are an equity research analyst. For the security below, list the distinct analysis angles an investor should examine before taking a position.

Security: %s (%s:%s), type %s

Return between 4 and 8 analysis vectors. For each vector provide:
- "id": a short stable lowercase slug (e.g. "financial-health", "competitive-moat")
- "title": a concise human-readable title
- "rationale": one sentence on why this angle matters for this specific security

Output a JSON array of vector objects. %s`, asset.Name, asset.Exchange, asset.Ticker, asset.AssetType, jsonOnlyInstruction)
}

func analyzeVectorPrompt(asset models.AssetCandidate, vector models.AnalysisVector) string {
	return fmt.Sprintf(`You are an equity research analyst writing one section of a research report.

Security: %s (%s:%s)
Analysis angle: %s
Why it matters: %s

Write the analysis for this angle only. Provide:
- "summary": 2-3 sentences capturing the key finding
- "fullText": the full analysis in markdown, 3-6 paragraphs, with specific figures where available
- "sentiment": "positive", "neutral" or "negative" for this angle in isolation

%s`, asset.Name, asset.Exchange, asset.Ticker, vector.Title, vector.Rationale, jsonOnlyInstruction)
}

func synthesizePrompt(asset models.AssetCandidate, sections []models.AnalysisContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a senior equity research analyst. Synthesize the section analyses below into a single investment view for %s (%s:%s).

`, asset.Name, asset.Exchange, asset.Ticker)

	for i, section := range sections {
		fmt.Fprintf(&sb, "--- Section %d (sentiment: %s) ---\n%s\n\n", i+1, section.Sentiment, section.Summary)
	}

	sb.WriteString(`Provide:
- "summary": 2-3 sentences with the overall conclusion
- "fullText": the synthesis in markdown, weighing the sections against each other
- "sentiment": the overall "positive", "neutral" or "negative" call
- "limitBuyPrice": a suggested limit buy price as a number in the trading currency, or null if no entry is advisable

`)
	sb.WriteString(jsonOnlyInstruction)
	return sb.String()
}

func answerPrompt(question string, history []models.Message, contextText string) string {
	var sb strings.Builder
	sb.WriteString("You are an investment research assistant. Answer the user's question using the research context below. If the context does not cover the question, say so rather than inventing figures.\n\n")

	if contextText != "" {
		fmt.Fprintf(&sb, "RESEARCH CONTEXT:\n%s\n\n", contextText)
	}

	if len(history) > 0 {
		sb.WriteString("CONVERSATION SO FAR:\n")
		for _, msg := range history {
			fmt.Fprintf(&sb, "%s: %s\n", strings.ToUpper(msg.Role), msg.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "QUESTION: %s\n\nProvide:\n- \"text\": the answer in markdown\n\n%s", question, jsonOnlyInstruction)
	return sb.String()
}

func answerWithSearchPrompt(question string) string {
	return fmt.Sprintf(`You are an investment research assistant with access to web search. Answer the question below using current information, citing figures with their dates.

QUESTION: %s

Answer in markdown. Be specific about dates and sources.`, question)
}

func alternativesPrompt(asset models.AssetCandidate) string {
	return fmt.Sprintf(`You are an equity research analyst. Identify the closest listed alternatives to %s (%s:%s), type %s: direct competitors or securities offering comparable exposure.

Return 3-5 alternatives. For each provide:
- "name": the full trading name
- "ticker": the exchange ticker code
- "exchange": the primary listing exchange code
- "assetType": one of "equity", "etf", "fund", "bond", "commodity", "crypto"
- "currency": the ISO 4217 trading currency code
- "isin": the ISIN if known, otherwise an empty string

Output a JSON array. %s`, asset.Name, asset.Exchange, asset.Ticker, asset.AssetType, jsonOnlyInstruction)
}

func quotePrompt(ticker, currency string) string {
	return fmt.Sprintf(`Provide the latest known market price for %s in %s.

Return:
- "ticker": %q
- "price": the price as a plain number (no currency symbols, no thousands separators)
- "currency": the ISO 4217 code of the price
- "date": the date the price is as of, in YYYY-MM-DD format

%s`, ticker, currency, ticker, jsonOnlyInstruction)
}

func historicalPricePrompt(ticker, date, currency string) string {
	return fmt.Sprintf(`Provide the closing market price for %s on %s in %s. Use the actual traded price on that date, not split- or dividend-adjusted figures unless the raw price is unavailable.

Return:
- "ticker": %q
- "price": the closing price as a plain number
- "currency": the ISO 4217 code of the price
- "date": the trading date used, in YYYY-MM-DD format (the nearest prior trading day if %s was not a trading day)

%s`, ticker, date, currency, ticker, date, jsonOnlyInstruction)
}

func futurePricePrompt(ticker, date, currency string) string {
	return fmt.Sprintf(`You are a quantitative analyst. Estimate a plausible price for %s on the future date %s in %s, based on current price, analyst targets and historical volatility. This is a scenario estimate, not a guarantee.

Return:
- "ticker": %q
- "price": the estimated price as a plain number
- "currency": the ISO 4217 code of the price
- "date": %q

%s`, ticker, date, currency, ticker, date, jsonOnlyInstruction)
}

func buyLimitPrompt(asset models.AssetCandidate, synthesis models.AnalysisContent) string {
	return fmt.Sprintf(`You are an equity research analyst. Given the investment synthesis below for %s (%s:%s), suggest a limit buy price that offers a sensible entry margin.

SYNTHESIS (sentiment: %s):
%s

Return:
- "limitBuyPrice": the suggested limit price as a plain number in the trading currency

%s`, asset.Name, asset.Exchange, asset.Ticker, synthesis.Sentiment, synthesis.Summary, jsonOnlyInstruction)
}

func sectorScreenPrompt(sector, exchange string) string {
	return fmt.Sprintf(`You are an equity screener. For the %q sector on %s, list the main listed constituents with their key valuation metrics.

Return:
- "sector": the sector name
- "commentary": 2-3 sentences on the sector's current state
- "constituents": an array where each entry has:
  - "name": the company name
  - "ticker": the exchange ticker code
  - "peRatio": trailing P/E ratio as a number
  - "eps": earnings per share as a number
  - "dividendYield": dividend yield as a percentage number
  - "sectorAvgPeRatio": the sector average P/E as a number
  - "sectorAvgEps": the sector average EPS as a number
  - "sectorAvgDividendYield": the sector average dividend yield as a percentage number

Use plain numbers for all metrics. %s`, sector, exchange, jsonOnlyInstruction)
}
