package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/services/ai"
	badgerstore "github.com/ternarybob/augur/internal/storage/badger"
)

func main() {
	configPath := os.Getenv("AUGUR_CONFIG")
	if configPath == "" {
		configPath = "augur.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal console logger so stdio stays clean for the MCP transport
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	common.SetDefaultExchange(config.Markets.DefaultExchange)

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer db.Close()

	kvStorage := badgerstore.NewKVStorage(db, logger)
	portfolioStorage := badgerstore.NewPortfolioStorage(db, logger)

	factory := ai.NewProviderFactory(
		&config.Gemini,
		&config.Claude,
		&config.LLM,
		kvStorage,
		logger,
	)
	research := ai.NewResearch(factory, logger)

	mcpServer := server.NewMCPServer(
		"augur",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createIdentifyAssetsTool(), handleIdentifyAssets(research, logger))
	mcpServer.AddTool(createGetQuoteTool(), handleGetQuote(research, logger))
	mcpServer.AddTool(createAnswerQuestionTool(), handleAnswerQuestion(research, logger))
	mcpServer.AddTool(createScreenSectorTool(), handleScreenSector(research, logger))
	mcpServer.AddTool(createListPortfolioTool(), handleListPortfolio(portfolioStorage, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
