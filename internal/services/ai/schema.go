package ai

import (
	"google.golang.org/genai"
)

// Response schemas for schema-capable providers. Gemini enforces these at
// generation time; the parse pipeline still runs afterwards because other
// providers and search-grounded calls return free-form text.

var assetCandidateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":      {Type: genai.TypeString, Description: "Full trading name of the security"},
		"ticker":    {Type: genai.TypeString, Description: "Exchange ticker code"},
		"exchange":  {Type: genai.TypeString, Description: "Primary listing exchange code"},
		"assetType": {Type: genai.TypeString, Description: "equity, etf, fund, bond, commodity or crypto"},
		"currency":  {Type: genai.TypeString, Description: "ISO 4217 trading currency"},
		"isin":      {Type: genai.TypeString, Description: "ISIN, empty if unknown"},
	},
	Required: []string{"name", "ticker", "exchange"},
}

var assetListSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: assetCandidateSchema,
}

var vectorListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeString, Description: "Short stable lowercase slug"},
			"title":     {Type: genai.TypeString, Description: "Human-readable vector title"},
			"rationale": {Type: genai.TypeString, Description: "Why this angle matters"},
		},
		Required: []string{"id", "title", "rationale"},
	},
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":  {Type: genai.TypeString, Description: "2-3 sentence key finding"},
		"fullText": {Type: genai.TypeString, Description: "Full markdown analysis"},
		"sentiment": {
			Type: genai.TypeString,
			Enum: []string{"positive", "neutral", "negative"},
		},
	},
	Required: []string{"summary", "fullText", "sentiment"},
}

var synthesisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":  {Type: genai.TypeString, Description: "Overall conclusion"},
		"fullText": {Type: genai.TypeString, Description: "Full markdown synthesis"},
		"sentiment": {
			Type: genai.TypeString,
			Enum: []string{"positive", "neutral", "negative"},
		},
		"limitBuyPrice": {Type: genai.TypeNumber, Nullable: genai.Ptr(true), Description: "Suggested limit buy price, null when no entry is advisable"},
	},
	Required: []string{"summary", "fullText", "sentiment"},
}

var answerSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"text": {Type: genai.TypeString, Description: "Markdown answer"},
	},
	Required: []string{"text"},
}

var priceQuoteSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"ticker":   {Type: genai.TypeString},
		"price":    {Type: genai.TypeNumber, Description: "Plain number, no symbols"},
		"currency": {Type: genai.TypeString, Description: "ISO 4217 code"},
		"date":     {Type: genai.TypeString, Description: "YYYY-MM-DD"},
	},
	Required: []string{"ticker", "price", "currency", "date"},
}

var buyLimitSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"limitBuyPrice": {Type: genai.TypeNumber, Description: "Suggested limit buy price"},
	},
	Required: []string{"limitBuyPrice"},
}

// Sector-screen metrics are deliberately typed as strings in the schema;
// generation still emits units and percent signs inline often enough that
// the sanitizer owns the numeric conversion.
var sectorScreenSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sector":     {Type: genai.TypeString},
		"commentary": {Type: genai.TypeString, Description: "2-3 sentences on the sector"},
		"constituents": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":                   {Type: genai.TypeString},
					"ticker":                 {Type: genai.TypeString},
					"peRatio":                {Type: genai.TypeString},
					"eps":                    {Type: genai.TypeString},
					"dividendYield":          {Type: genai.TypeString},
					"sectorAvgPeRatio":       {Type: genai.TypeString},
					"sectorAvgEps":           {Type: genai.TypeString},
					"sectorAvgDividendYield": {Type: genai.TypeString},
				},
				Required: []string{"name", "ticker"},
			},
		},
	},
	Required: []string{"sector", "commentary", "constituents"},
}
