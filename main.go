package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/client"
	"github.com/gvr2111/statement-importer/config"
	"github.com/gvr2111/statement-importer/handler"
	"github.com/gvr2111/statement-importer/service"
	"github.com/gvr2111/statement-importer/utils"
)

func main() {
	cfg := config.LoadConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, logger)
	defer tesseractClient.Close()

	pdfProcessor := service.NewPDFProcessor(tesseractClient, logger)

	var classifier utils.AmountClassifier
	if cfg.ClassifierStrategy == "position" {
		classifier = utils.PositionClassifier{Bounds: utils.ColumnBounds{
			DepositsStart:    cfg.ColDepositsStart,
			DepositsEnd:      cfg.ColDepositsEnd,
			WithdrawalsStart: cfg.ColWithdrawalsStart,
			WithdrawalsEnd:   cfg.ColWithdrawalsEnd,
			BalanceStart:     cfg.ColBalanceStart,
		}}
	} else {
		classifier = utils.DeltaClassifier{}
	}

	statementService := service.NewStatementService(pdfProcessor, classifier, cfg, logger)

	var summarizer service.Summarizer
	if cfg.OllamaURL != "" {
		summarizer = client.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.SummaryBalanceFloor, logger)
		logger.Info().Str("model", cfg.OllamaModel).Msg("using model-backed statement summarizer")
	} else {
		summarizer = service.NewTotalLineSummarizer(cfg.SummaryBalanceFloor, logger)
	}

	verificationService := service.NewVerificationService(cfg.Tolerance, logger)
	budgetClient := client.NewBudgetClient(cfg.BudgetServerURL, cfg.BudgetPassword, cfg.BudgetFile, logger)
	categorizer := utils.NewCategorizer()

	importService := service.NewImportService(
		pdfProcessor,
		statementService,
		summarizer,
		verificationService,
		budgetClient,
		categorizer,
		cfg,
		logger,
	)

	statementHandler := handler.NewStatementHandler(statementService, importService, cfg, logger)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		statements := v1.Group("/statements")
		{
			statements.POST("/parse", statementHandler.ParseStatement)
			statements.POST("/verify", statementHandler.VerifyStatement)
			statements.POST("/import", statementHandler.ImportStatement)
		}
	}

	logger.Info().Str("port", cfg.ServerPort).Msg("starting statement importer")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
