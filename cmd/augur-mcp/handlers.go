package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/services/ai"
)

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
	}
}

func textResult(markdown string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(markdown),
		},
	}
}

// handleIdentifyAssets implements the identify_assets tool
func handleIdentifyAssets(research *ai.Research, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		model := request.GetString("model", "")

		result, err := research.IdentifyAssets(ctx, query, model)
		if err != nil {
			logger.Error().Err(err).Msg("Asset identification failed")
			return errorResult(fmt.Sprintf("Identification error: %v", err)), nil
		}

		return textResult(formatCandidates(query, result.Data)), nil
	}
}

// handleGetQuote implements the get_quote tool
func handleGetQuote(research *ai.Research, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		currency := request.GetString("currency", "AUD")
		ticker = common.ParseTicker(ticker).String()

		result, err := research.Quote(ctx, ticker, currency, "")
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Quote failed")
			return errorResult(fmt.Sprintf("Quote error: %v", err)), nil
		}

		return textResult(formatQuote(&result.Data)), nil
	}
}

// handleAnswerQuestion implements the answer_question tool
func handleAnswerQuestion(research *ai.Research, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return errorResult("Error: question parameter is required"), nil
		}

		var answer string
		var citations int
		if request.GetBool("web_search", false) {
			result, err := research.AnswerWithSearch(ctx, question, "")
			if err != nil {
				logger.Error().Err(err).Msg("Grounded answer failed")
				return errorResult(fmt.Sprintf("Answer error: %v", err)), nil
			}
			answer = formatAnswer(&result.Data)
			citations = len(result.Data.Citations)
		} else {
			result, err := research.Answer(ctx, question, nil, "", "")
			if err != nil {
				logger.Error().Err(err).Msg("Answer failed")
				return errorResult(fmt.Sprintf("Answer error: %v", err)), nil
			}
			answer = formatAnswer(&result.Data)
		}

		logger.Debug().Int("citations", citations).Msg("Answer generated")
		return textResult(answer), nil
	}
}

// handleScreenSector implements the screen_sector tool
func handleScreenSector(research *ai.Research, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sector, err := request.RequireString("sector")
		if err != nil || sector == "" {
			return errorResult("Error: sector parameter is required"), nil
		}

		exchange := request.GetString("exchange", common.DefaultExchange)

		result, err := research.SectorScreen(ctx, sector, exchange, "")
		if err != nil {
			logger.Error().Err(err).Str("sector", sector).Msg("Sector screen failed")
			return errorResult(fmt.Sprintf("Screen error: %v", err)), nil
		}

		return textResult(formatSectorScreen(&result.Data)), nil
	}
}

// handleListPortfolio implements the list_portfolio tool
func handleListPortfolio(storage interfaces.PortfolioStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		positions, err := storage.List(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Portfolio list failed")
			return errorResult(fmt.Sprintf("Portfolio error: %v", err)), nil
		}

		return textResult(formatPositions(positions)), nil
	}
}
