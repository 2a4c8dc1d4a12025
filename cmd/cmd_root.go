// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/store"
	"github.com/jcodagnone/sheetmap/utils/httputils"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	DbPath         string
	TraceHTTP      bool
	TraceHTTPBody  bool
	Oracle         bool
	CandidatesFile string
}

var globalOptions = &GlobalOptions{}

var rootCmd = &cobra.Command{
	Use:   "sheetmap",
	Short: "plot spreadsheet rows on a map",
	Long: `
sheetmap reads a spreadsheet export (CSV, TSV, XLSX, a published Google Sheet),
figures out which columns hold the coordinates, and turns every row with a
usable latitude and longitude into a point, optionally colored by a category.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newHTTPClient() *http.Client {
	return httputils.NewClient(&httputils.ClientOptions{
		UserAgent:           fmt.Sprintf("sheetmap/%s (+https://github.com/jcodagnone/sheetmap)", Version),
		EnableHTTPTrace:     globalOptions.TraceHTTP || globalOptions.TraceHTTPBody,
		EnableHTTPBodyTrace: globalOptions.TraceHTTPBody,
	})
}

// newMapper builds the column mapper from the global flags. The oracle is
// only consulted when --oracle is given; without credentials it is skipped.
func newMapper(ctx context.Context, client *http.Client) (*columns.Mapper, error) {
	candidates := columns.DefaultCandidates()

	if globalOptions.CandidatesFile != "" {
		c, err := columns.LoadCandidates(globalOptions.CandidatesFile)
		if err != nil {
			return nil, err
		}

		candidates = c
	}

	var suggester columns.Suggester

	if globalOptions.Oracle {
		gemini, err := columns.NewGeminiSuggesterFromEnv(ctx, client)
		if err != nil {
			log.Printf("⚠️ Column oracle disabled: %v", err)
		} else {
			log.Printf("🔮 Using %s to detect coordinate columns", gemini.Model())
			suggester = gemini
		}
	}

	return columns.NewMapper(suggester, candidates), nil
}

// openRepository opens (creating if needed) the dataset store under --db-path.
func openRepository() (*sql.DB, store.Repository, error) {
	if err := os.MkdirAll(globalOptions.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(globalOptions.DbPath, "sheetmap.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&globalOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the dataset store",
	)
	rootCmd.PersistentFlags().BoolVar(
		&globalOptions.TraceHTTP,
		"trace-http",
		false,
		"Trace HTTP requests and responses to stderr",
	)
	rootCmd.PersistentFlags().BoolVar(
		&globalOptions.TraceHTTPBody,
		"trace-http-body",
		false,
		"Like --trace-http, including bodies",
	)
	rootCmd.PersistentFlags().BoolVar(
		&globalOptions.Oracle,
		"oracle",
		false,
		"Ask Gemini for the coordinate columns before falling back to header rules (needs GEMINI_API_KEY or ADC)",
	)
	rootCmd.PersistentFlags().StringVar(
		&globalOptions.CandidatesFile,
		"candidates",
		"",
		"JSON file overriding the header names used to detect coordinate columns",
	)
}
