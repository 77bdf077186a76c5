package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/database"
	"github.com/polisure/certprep-backend/internal/logger"
	"github.com/polisure/certprep-backend/internal/repository"
	"github.com/polisure/certprep-backend/internal/service"
)

// import-bank loads question workbooks into the database.
//
// With no flags it scans the configured bank directory, expecting one
// subdirectory per certification:
//
//	banks/life/登錄版_人身保險_題庫.xlsx
//	banks/investment/投資型題庫.xlsx
//
// With -cert and -file it imports a single workbook.
func main() {
	var certType, file, dir string
	flag.StringVar(&certType, "cert", "", "Certification type for a single file import")
	flag.StringVar(&file, "file", "", "Path to one .xlsx workbook")
	flag.StringVar(&dir, "dir", "", "Bank directory to scan (default: BANK_DIR from config)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	bankService := service.NewBankService(repository.NewQuestionRepository(pool), log)

	if file != "" {
		if certType == "" {
			log.Fatal().Msg("-cert is required with -file")
		}
		b, err := bankService.ImportFile(ctx, certType, file)
		if err != nil {
			log.Fatal().Err(err).Msg("Import failed")
		}
		fmt.Printf("Imported %s: %d questions (%d rejected)\n", b.SourceFile, b.QuestionCount, b.RejectedCount)
		return
	}

	if dir == "" {
		dir = cfg.BankDir
	}
	banks, err := bankService.ImportDir(ctx, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	for _, b := range banks {
		fmt.Printf("Imported %s/%s: %d questions (%d rejected)\n",
			b.CertType, b.SourceFile, b.QuestionCount, b.RejectedCount)
	}
	fmt.Printf("Done: %d bank(s) imported\n", len(banks))
}
