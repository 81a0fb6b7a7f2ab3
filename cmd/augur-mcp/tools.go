package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createIdentifyAssetsTool returns the identify_assets tool definition
func createIdentifyAssetsTool() mcp.Tool {
	return mcp.NewTool("identify_assets",
		mcp.WithDescription("Resolve a free-text description to concrete listed assets with exchange-qualified tickers"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Company name, ticker fragment or description (e.g. 'australian lithium miners')"),
		),
		mcp.WithString("model",
			mcp.Description("Model override (default: configured provider default)"),
		),
	)
}

// createGetQuoteTool returns the get_quote tool definition
func createGetQuoteTool() mcp.Tool {
	return mcp.NewTool("get_quote",
		mcp.WithDescription("Fetch the current indicative price for a ticker"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker, optionally exchange-qualified (BHP or ASX:BHP)"),
		),
		mcp.WithString("currency",
			mcp.Description("Quote currency (default: AUD)"),
		),
	)
}

// createAnswerQuestionTool returns the answer_question tool definition
func createAnswerQuestionTool() mcp.Tool {
	return mcp.NewTool("answer_question",
		mcp.WithDescription("Answer an investment research question, optionally grounded with web search"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithBoolean("web_search",
			mcp.Description("Ground the answer with web search and return citations (default: false)"),
		),
	)
}

// createScreenSectorTool returns the screen_sector tool definition
func createScreenSectorTool() mcp.Tool {
	return mcp.NewTool("screen_sector",
		mcp.WithDescription("Screen a market sector for constituents with valuation metrics"),
		mcp.WithString("sector",
			mcp.Required(),
			mcp.Description("Sector name (e.g. 'Materials', 'Financials')"),
		),
		mcp.WithString("exchange",
			mcp.Description("Exchange code (default: configured default exchange)"),
		),
	)
}

// createListPortfolioTool returns the list_portfolio tool definition
func createListPortfolioTool() mcp.Tool {
	return mcp.NewTool("list_portfolio",
		mcp.WithDescription("List tracked portfolio positions"),
	)
}
