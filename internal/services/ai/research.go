// -----------------------------------------------------------------------
// Research facade - one method per research operation. Every method makes
// exactly one upstream generation call, parses the response through the
// strict pipeline, and surfaces every failure as a classified error.
// Methods hold no mutable state, so concurrent calls are independent.
// -----------------------------------------------------------------------

package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/aierrors"
	"github.com/ternarybob/augur/internal/models"
)

// Operation labels carried in malformed-payload diagnostics and logs.
const (
	opIdentifyAssets  = "identify_assets"
	opListVectors     = "list_analysis_vectors"
	opAnalyzeVector   = "analyze_vector"
	opSynthesize      = "synthesize"
	opAnswer          = "answer"
	opAnswerSearch    = "answer_with_search"
	opAlternatives    = "alternatives"
	opQuote           = "quote"
	opHistoricalPrice = "historical_price"
	opFuturePrice     = "future_price"
	opBuyLimitPrice   = "buy_limit_price"
	opSectorScreen    = "sector_screen"
)

// Result pairs a typed payload with the token accounting of the call that
// produced it. Callers aggregating across concurrent calls sum Usage after
// all calls complete.
type Result[T any] struct {
	Data  T
	Usage models.Usage
}

// Research is the AI research facade.
type Research struct {
	generator Generator
	logger    arbor.ILogger
}

// NewResearch creates the research facade on top of a content generator.
func NewResearch(generator Generator, logger arbor.ILogger) *Research {
	return &Research{
		generator: generator,
		logger:    logger,
	}
}

func tempPtr(v float32) *float32 { return &v }

// generate issues the single upstream call for an operation and classifies
// any failure. The returned error is always a *aierrors.Error.
func (r *Research) generate(ctx context.Context, op, model string, request *GenerateRequest) (*GenerateResult, error) {
	correlationID := uuid.New().String()

	r.logger.Debug().
		Str("operation", op).
		Str("model", model).
		Str("correlation_id", correlationID).
		Msg("Issuing research generation call")

	result, err := r.generator.GenerateContent(ctx, request)
	if err != nil {
		classified := aierrors.Classify(err, fmt.Sprintf("%s request failed", op), model)
		r.logger.Warn().
			Str("operation", op).
			Str("correlation_id", correlationID).
			Str("kind", string(classified.Kind)).
			Err(err).
			Msg("Research generation call failed")
		return nil, classified
	}

	r.logger.Debug().
		Str("operation", op).
		Str("correlation_id", correlationID).
		Int("response_length", len(result.Text)).
		Int("total_tokens", result.Usage.TotalTokens).
		Msg("Research generation call completed")

	return result, nil
}

// parseResponse runs the strict parse pipeline over a response and wraps a
// parse failure for the given operation and model.
func parseResponse[T any](r *Research, resp *GenerateResult, op, model string) (T, error) {
	parsed, err := ParseStrict[T](r.logger, resp.Text, op)
	if err != nil {
		var zero T
		return zero, aierrors.Classify(err, fmt.Sprintf("%s returned an unusable response", op), model)
	}
	return parsed, nil
}

// IdentifyAssets resolves a free-text query to listed security candidates.
func (r *Research) IdentifyAssets(ctx context.Context, query, model string) (*Result[[]models.AssetCandidate], error) {
	resp, err := r.generate(ctx, opIdentifyAssets, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: identifyAssetsPrompt(query)}},
		Model:        model,
		Temperature:  tempPtr(0.2),
		OutputSchema: assetListSchema,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := parseResponse[[]models.AssetCandidate](r, resp, opIdentifyAssets, model)
	if err != nil {
		return nil, err
	}

	valid := candidates[:0]
	for _, c := range candidates {
		if c.Name != "" && c.Ticker != "" {
			valid = append(valid, c)
		}
	}

	return &Result[[]models.AssetCandidate]{Data: valid, Usage: resp.Usage}, nil
}

// ListAnalysisVectors proposes the analysis angles for an asset.
func (r *Research) ListAnalysisVectors(ctx context.Context, asset models.AssetCandidate, model string) (*Result[[]models.AnalysisVector], error) {
	resp, err := r.generate(ctx, opListVectors, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: listVectorsPrompt(asset)}},
		Model:        model,
		OutputSchema: vectorListSchema,
	})
	if err != nil {
		return nil, err
	}

	vectors, err := parseResponse[[]models.AnalysisVector](r, resp, opListVectors, model)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, aierrors.Malformed(opListVectors, "response contained no analysis vectors")
	}

	return &Result[[]models.AnalysisVector]{Data: vectors, Usage: resp.Usage}, nil
}

// AnalyzeVector produces the analysis for a single vector of an asset.
func (r *Research) AnalyzeVector(ctx context.Context, asset models.AssetCandidate, vector models.AnalysisVector, model string) (*Result[models.AnalysisContent], error) {
	resp, err := r.generate(ctx, opAnalyzeVector, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: analyzeVectorPrompt(asset, vector)}},
		Model:        model,
		OutputSchema: analysisSchema,
	})
	if err != nil {
		return nil, err
	}

	content, err := parseResponse[models.AnalysisContent](r, resp, opAnalyzeVector, model)
	if err != nil {
		return nil, err
	}
	if err := checkAnalysisComplete(content, opAnalyzeVector); err != nil {
		return nil, err
	}

	return &Result[models.AnalysisContent]{Data: content, Usage: resp.Usage}, nil
}

// Synthesize combines section analyses into a single investment view.
func (r *Research) Synthesize(ctx context.Context, asset models.AssetCandidate, sections []models.AnalysisContent, model string) (*Result[models.AnalysisContent], error) {
	resp, err := r.generate(ctx, opSynthesize, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: synthesizePrompt(asset, sections)}},
		Model:        model,
		OutputSchema: synthesisSchema,
	})
	if err != nil {
		return nil, err
	}

	content, err := parseResponse[models.AnalysisContent](r, resp, opSynthesize, model)
	if err != nil {
		return nil, err
	}
	if err := checkAnalysisComplete(content, opSynthesize); err != nil {
		return nil, err
	}

	return &Result[models.AnalysisContent]{Data: content, Usage: resp.Usage}, nil
}

// Answer answers a question against research context and conversation
// history, without web access.
func (r *Research) Answer(ctx context.Context, question string, history []models.Message, contextText, model string) (*Result[models.Answer], error) {
	resp, err := r.generate(ctx, opAnswer, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: answerPrompt(question, history, contextText)}},
		Model:        model,
		OutputSchema: answerSchema,
	})
	if err != nil {
		return nil, err
	}

	answer, err := parseResponse[models.Answer](r, resp, opAnswer, model)
	if err != nil {
		return nil, err
	}
	if answer.Text == "" {
		return nil, aierrors.Malformed(opAnswer, "response missing answer text")
	}

	return &Result[models.Answer]{Data: answer, Usage: resp.Usage}, nil
}

// AnswerWithSearch answers a question with web-search grounding. Grounded
// calls return free markdown rather than schema-enforced JSON, so the text
// is taken as-is and citations come from the grounding metadata.
func (r *Research) AnswerWithSearch(ctx context.Context, question, model string) (*Result[models.Answer], error) {
	resp, err := r.generate(ctx, opAnswerSearch, model, &GenerateRequest{
		Messages:        []models.Message{{Role: "user", Content: answerWithSearchPrompt(question)}},
		Model:           model,
		EnableWebSearch: true,
	})
	if err != nil {
		return nil, err
	}

	if resp.Text == "" {
		return nil, aierrors.Malformed(opAnswerSearch, "response missing answer text")
	}

	return &Result[models.Answer]{
		Data:  models.Answer{Text: resp.Text, Citations: resp.Citations},
		Usage: resp.Usage,
	}, nil
}

// Alternatives finds comparable securities for an asset.
func (r *Research) Alternatives(ctx context.Context, asset models.AssetCandidate, model string) (*Result[[]models.AssetCandidate], error) {
	resp, err := r.generate(ctx, opAlternatives, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: alternativesPrompt(asset)}},
		Model:        model,
		Temperature:  tempPtr(0.3),
		OutputSchema: assetListSchema,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := parseResponse[[]models.AssetCandidate](r, resp, opAlternatives, model)
	if err != nil {
		return nil, err
	}

	valid := candidates[:0]
	for _, c := range candidates {
		if c.Name != "" && c.Ticker != "" && c.Ticker != asset.Ticker {
			valid = append(valid, c)
		}
	}

	return &Result[[]models.AssetCandidate]{Data: valid, Usage: resp.Usage}, nil
}

// Quote fetches the latest known price for a ticker.
func (r *Research) Quote(ctx context.Context, ticker, currency, model string) (*Result[models.PriceQuote], error) {
	resp, err := r.generate(ctx, opQuote, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: quotePrompt(ticker, currency)}},
		Model:        model,
		Temperature:  tempPtr(0),
		OutputSchema: priceQuoteSchema,
	})
	if err != nil {
		return nil, err
	}

	quote, err := parseResponse[models.PriceQuote](r, resp, opQuote, model)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, aierrors.Malformed(opQuote, fmt.Sprintf("response missing a usable price for %s", ticker))
	}

	return &Result[models.PriceQuote]{Data: quote, Usage: resp.Usage}, nil
}

// HistoricalPrice fetches the closing price for a ticker on a date. When a
// reliable current price is supplied (magnitude above 1), the parsed price
// is checked for plausibility against it before being returned.
func (r *Research) HistoricalPrice(ctx context.Context, ticker, date, currency string, currentPrice float64, model string) (*Result[models.PriceQuote], error) {
	resp, err := r.generate(ctx, opHistoricalPrice, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: historicalPricePrompt(ticker, date, currency)}},
		Model:        model,
		Temperature:  tempPtr(0),
		OutputSchema: priceQuoteSchema,
	})
	if err != nil {
		return nil, err
	}

	quote, err := parseResponse[models.PriceQuote](r, resp, opHistoricalPrice, model)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, aierrors.Malformed(opHistoricalPrice, fmt.Sprintf("response missing a usable price for %s on %s", ticker, date))
	}

	if err := CheckHistoricalPrice(quote.Price, currentPrice, date); err != nil {
		return nil, aierrors.Classify(err, fmt.Sprintf("%s returned an implausible price", opHistoricalPrice), model)
	}

	return &Result[models.PriceQuote]{Data: quote, Usage: resp.Usage}, nil
}

// FuturePrice estimates a price for a future date. No anomaly guard applies;
// a prediction has no current-price plausibility contract.
func (r *Research) FuturePrice(ctx context.Context, ticker, date, currency, model string) (*Result[models.PriceQuote], error) {
	resp, err := r.generate(ctx, opFuturePrice, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: futurePricePrompt(ticker, date, currency)}},
		Model:        model,
		Temperature:  tempPtr(0.2),
		OutputSchema: priceQuoteSchema,
	})
	if err != nil {
		return nil, err
	}

	quote, err := parseResponse[models.PriceQuote](r, resp, opFuturePrice, model)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, aierrors.Malformed(opFuturePrice, fmt.Sprintf("response missing a usable price for %s on %s", ticker, date))
	}

	return &Result[models.PriceQuote]{Data: quote, Usage: resp.Usage}, nil
}

type buyLimitWire struct {
	LimitBuyPrice float64 `json:"limitBuyPrice"`
}

// BuyLimitPrice suggests a limit buy entry price from a completed synthesis.
func (r *Research) BuyLimitPrice(ctx context.Context, asset models.AssetCandidate, synthesis models.AnalysisContent, model string) (*Result[float64], error) {
	resp, err := r.generate(ctx, opBuyLimitPrice, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: buyLimitPrompt(asset, synthesis)}},
		Model:        model,
		Temperature:  tempPtr(0),
		OutputSchema: buyLimitSchema,
	})
	if err != nil {
		return nil, err
	}

	wire, err := parseResponse[buyLimitWire](r, resp, opBuyLimitPrice, model)
	if err != nil {
		return nil, err
	}
	if wire.LimitBuyPrice <= 0 {
		return nil, aierrors.Malformed(opBuyLimitPrice, fmt.Sprintf("response missing a usable limit price for %s", asset.Ticker))
	}

	return &Result[float64]{Data: wire.LimitBuyPrice, Usage: resp.Usage}, nil
}

// Wire shapes for the sector screen. Metric fields arrive loosely typed
// ("12.3%", "N/A", plain numbers); the sanitizer normalizes them after
// parsing.
type sectorConstituentWire struct {
	Name                   string `json:"name"`
	Ticker                 string `json:"ticker"`
	PERatio                any    `json:"peRatio"`
	EPS                    any    `json:"eps"`
	DividendYield          any    `json:"dividendYield"`
	SectorAvgPERatio       any    `json:"sectorAvgPeRatio"`
	SectorAvgEPS           any    `json:"sectorAvgEps"`
	SectorAvgDividendYield any    `json:"sectorAvgDividendYield"`
}

type sectorScreenWire struct {
	Sector       string                  `json:"sector"`
	Commentary   string                  `json:"commentary"`
	Constituents []sectorConstituentWire `json:"constituents"`
}

// SectorScreen lists a sector's constituents with valuation metrics, each
// metric normalized through the numeric sanitizer.
func (r *Research) SectorScreen(ctx context.Context, sector, exchange, model string) (*Result[models.MarketAnalysisResult], error) {
	resp, err := r.generate(ctx, opSectorScreen, model, &GenerateRequest{
		Messages:     []models.Message{{Role: "user", Content: sectorScreenPrompt(sector, exchange)}},
		Model:        model,
		Temperature:  tempPtr(0.2),
		OutputSchema: sectorScreenSchema,
	})
	if err != nil {
		return nil, err
	}

	wire, err := parseResponse[sectorScreenWire](r, resp, opSectorScreen, model)
	if err != nil {
		return nil, err
	}

	result := models.MarketAnalysisResult{
		Sector:       wire.Sector,
		Commentary:   wire.Commentary,
		Constituents: make([]models.SectorConstituent, 0, len(wire.Constituents)),
	}
	if result.Sector == "" {
		result.Sector = sector
	}

	for _, c := range wire.Constituents {
		if c.Name == "" && c.Ticker == "" {
			continue
		}
		result.Constituents = append(result.Constituents, models.SectorConstituent{
			Name:                   c.Name,
			Ticker:                 c.Ticker,
			PERatio:                SanitizeNumber(c.PERatio),
			EPS:                    SanitizeNumber(c.EPS),
			DividendYield:          SanitizeNumber(c.DividendYield),
			SectorAvgPERatio:       SanitizeNumber(c.SectorAvgPERatio),
			SectorAvgEPS:           SanitizeNumber(c.SectorAvgEPS),
			SectorAvgDividendYield: SanitizeNumber(c.SectorAvgDividendYield),
		})
	}

	return &Result[models.MarketAnalysisResult]{Data: result, Usage: resp.Usage}, nil
}

func checkAnalysisComplete(content models.AnalysisContent, op string) error {
	if content.Summary == "" || content.FullText == "" {
		return aierrors.Malformed(op, "response missing summary or full text")
	}
	switch content.Sentiment {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return nil
	default:
		return aierrors.Malformed(op, fmt.Sprintf("response carried unrecognized sentiment %q", content.Sentiment))
	}
}
