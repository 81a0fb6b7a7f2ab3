package models

// SectorConstituent is one company in a sector screen. Metric fields are
// loosely typed on the wire (the model sometimes emits "12.3%" or "N/A")
// and are normalized to numbers by the sanitizer before the result is
// returned to callers.
type SectorConstituent struct {
	Name                   string  `json:"name"`
	Ticker                 string  `json:"ticker"`
	PERatio                float64 `json:"peRatio"`
	EPS                    float64 `json:"eps"`
	DividendYield          float64 `json:"dividendYield"`
	SectorAvgPERatio       float64 `json:"sectorAvgPeRatio"`
	SectorAvgEPS           float64 `json:"sectorAvgEps"`
	SectorAvgDividendYield float64 `json:"sectorAvgDividendYield"`
}

// MarketAnalysisResult is the typed result of a sector screen.
type MarketAnalysisResult struct {
	Sector       string              `json:"sector"`
	Commentary   string              `json:"commentary,omitempty"`
	Constituents []SectorConstituent `json:"constituents"`
}
