package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/augur/internal/models"
)

// formatCandidates renders identification results as markdown
func formatCandidates(query string, candidates []models.AssetCandidate) string {
	if len(candidates) == 0 {
		return fmt.Sprintf("No assets matched %q.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Assets matching %q\n\n", query)
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- **%s** (%s)", c.Name, c.Ticker)
		if c.AssetType != "" {
			fmt.Fprintf(&sb, " - %s", c.AssetType)
		}
		if c.Currency != "" {
			fmt.Fprintf(&sb, ", %s", c.Currency)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatQuote renders a price quote as markdown
func formatQuote(quote *models.PriceQuote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", quote.Ticker)
	fmt.Fprintf(&sb, "**Price:** %.2f %s\n", quote.Price, quote.Currency)
	if quote.Date != "" {
		fmt.Fprintf(&sb, "**As of:** %s\n", quote.Date)
	}
	return sb.String()
}

// formatAnswer renders an answer with any citations as markdown
func formatAnswer(answer *models.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Text)

	if len(answer.Citations) > 0 {
		sb.WriteString("\n\n## Sources\n\n")
		for i, c := range answer.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, title, c.URI)
		}
	}
	return sb.String()
}

// formatSectorScreen renders sector screen results as a markdown table
func formatSectorScreen(result *models.MarketAnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s sector\n\n", result.Sector)

	if result.Commentary != "" {
		sb.WriteString(result.Commentary)
		sb.WriteString("\n\n")
	}

	if len(result.Constituents) == 0 {
		sb.WriteString("No constituents returned.\n")
		return sb.String()
	}

	sb.WriteString("| Company | Ticker | P/E | EPS | Div Yield | Sector P/E |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range result.Constituents {
		fmt.Fprintf(&sb, "| %s | %s | %.1f | %.2f | %.2f%% | %.1f |\n",
			c.Name, c.Ticker, c.PERatio, c.EPS, c.DividendYield, c.SectorAvgPERatio)
	}
	return sb.String()
}

// formatPositions renders portfolio positions as markdown
func formatPositions(positions []models.Position) string {
	if len(positions) == 0 {
		return "No positions tracked."
	}

	var sb strings.Builder
	sb.WriteString("# Portfolio\n\n")
	sb.WriteString("| Ticker | Name | Units | Cost basis | Currency |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, p := range positions {
		fmt.Fprintf(&sb, "| %s | %s | %.2f | %.2f | %s |\n",
			p.Ticker, p.Name, p.Units, p.CostBasis, p.Currency)
	}
	return sb.String()
}
