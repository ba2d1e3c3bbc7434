package main

import (
	"fmt"
	"os"
	"time"

	"tourdesk/internal/export"
	"tourdesk/pkg/config"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var outputDir string

var rootCmd = &cobra.Command{
	Use:   "tourdesk-export",
	Short: "Dump suppliers and tours as upsert SQL plus JSON backups",
	Long: `Reads every supplier and tour from the database and writes three files
into the output directory: a dated migration script of INSERT ... ON
DUPLICATE KEY UPDATE statements, and JSON backups of both tables.`,
	RunE: runExport,
}

func main() {
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory to write the export files into")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()

	if err := database.InitDB(cfg); err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	db := database.GetDB()

	var dump export.Dump
	if err := db.Order("id").Find(&dump.Suppliers).Error; err != nil {
		log.Error("Failed to load suppliers", zap.Error(err))
		return err
	}
	if err := db.Order("id").Find(&dump.Tours).Error; err != nil {
		log.Error("Failed to load tours", zap.Error(err))
		return err
	}

	log.Info("Loaded records",
		zap.Int("suppliers", len(dump.Suppliers)),
		zap.Int("tours", len(dump.Tours)))

	files, err := dump.WriteFiles(outputDir, time.Now())
	if err != nil {
		log.Error("Failed to write export files", zap.Error(err))
		return err
	}

	for _, f := range files {
		log.Info("Wrote export file", zap.String("file", f))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d suppliers and %d tours into %d files\n",
		len(dump.Suppliers), len(dump.Tours), len(files))
	return nil
}
