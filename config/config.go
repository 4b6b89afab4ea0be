package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config carries every tunable of the pipeline. It is built once at startup
// and passed into constructors; nothing reads the environment afterwards and
// no credential lives in code.
type Config struct {
	ServerPort string

	BudgetServerURL string
	BudgetPassword  string
	BudgetFile      string
	AccountName     string

	// PDFPassword is the default statement password, used when a request does
	// not carry one.
	PDFPassword string

	OllamaURL   string
	OllamaModel string

	// Tolerance is the maximum allowed absolute discrepancy between computed
	// and authoritative totals.
	Tolerance float64
	// OpeningBalanceFloor rejects brought-forward amounts too small to be a
	// plausible account balance.
	OpeningBalanceFloor float64
	// SummaryBalanceFloor is the stricter floor used by the summary oracle.
	SummaryBalanceFloor float64
	// SkipRatioWarn is the skipped-records ratio above which a warning is
	// emitted even when reconciliation passes.
	SkipRatioWarn float64

	// ClassifierStrategy selects "delta" (recommended) or "position".
	ClassifierStrategy string
	// Column x-boundaries for the position classifier, tuned per statement
	// layout.
	ColDepositsStart    float64
	ColDepositsEnd      float64
	ColWithdrawalsStart float64
	ColWithdrawalsEnd   float64
	ColBalanceStart     float64

	TesseractDataPath string
	MaxFileSize       int64
}

// LoadConfig builds the configuration from environment variables with viper,
// falling back to defaults suitable for a local setup.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("IMPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("budget.url", "http://localhost:5006")
	v.SetDefault("budget.password", "")
	v.SetDefault("budget.file", "My Finances")
	v.SetDefault("budget.account", "icici")
	v.SetDefault("pdf.password", "")
	v.SetDefault("ollama.url", "")
	v.SetDefault("ollama.model", "qwen2.5:7b")
	v.SetDefault("tolerance", 1.0)
	v.SetDefault("opening.balance.floor", 10000.0)
	v.SetDefault("summary.balance.floor", 100000.0)
	v.SetDefault("skip.ratio.warn", 0.05)
	v.SetDefault("classifier", "delta")
	v.SetDefault("col.deposits.start", 365.0)
	v.SetDefault("col.deposits.end", 415.0)
	v.SetDefault("col.withdrawals.start", 440.0)
	v.SetDefault("col.withdrawals.end", 520.0)
	v.SetDefault("col.balance.start", 520.0)
	v.SetDefault("tessdata.prefix", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("max.file.size", int64(32<<20))

	return &Config{
		ServerPort:          v.GetString("server.port"),
		BudgetServerURL:     v.GetString("budget.url"),
		BudgetPassword:      v.GetString("budget.password"),
		BudgetFile:          v.GetString("budget.file"),
		AccountName:         v.GetString("budget.account"),
		PDFPassword:         v.GetString("pdf.password"),
		OllamaURL:           v.GetString("ollama.url"),
		OllamaModel:         v.GetString("ollama.model"),
		Tolerance:           v.GetFloat64("tolerance"),
		OpeningBalanceFloor: v.GetFloat64("opening.balance.floor"),
		SummaryBalanceFloor: v.GetFloat64("summary.balance.floor"),
		SkipRatioWarn:       v.GetFloat64("skip.ratio.warn"),
		ClassifierStrategy:  v.GetString("classifier"),
		ColDepositsStart:    v.GetFloat64("col.deposits.start"),
		ColDepositsEnd:      v.GetFloat64("col.deposits.end"),
		ColWithdrawalsStart: v.GetFloat64("col.withdrawals.start"),
		ColWithdrawalsEnd:   v.GetFloat64("col.withdrawals.end"),
		ColBalanceStart:     v.GetFloat64("col.balance.start"),
		TesseractDataPath:   v.GetString("tessdata.prefix"),
		MaxFileSize:         v.GetInt64("max.file.size"),
	}
}
