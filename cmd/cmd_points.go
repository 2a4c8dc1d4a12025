// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/pipeline"
	"github.com/jcodagnone/sheetmap/server"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/store"
	"github.com/jcodagnone/sheetmap/style"
	"github.com/jcodagnone/sheetmap/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// PointsOptions are the flags of the points command.
type PointsOptions struct {
	Lat          string
	Lng          string
	Format       string
	StyleColumn  string
	Palette      []string
	FilterColumn string
	Filter       []string
	Selected     int
	Persist      bool
}

var pointsOptions = &PointsOptions{}

var pointsCmd = &cobra.Command{
	Use:   "points <file or url>",
	Short: "Extract the points of a spreadsheet",
	Long: `Reads a spreadsheet, detects (or takes from --lat/--lng) the coordinate
columns and prints one point per usable row.

Examples:
  sheetmap points stations.csv
  sheetmap points --format geojson --style-column Kind "https://docs.google.com/spreadsheets/d/…/edit#gid=0"
  sheetmap points --lat GPS --lng GPS --persist stations.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch pointsOptions.Format {
		case "json", "geojson", "csv":
		default:
			return fmt.Errorf("unknown format %q (json, geojson or csv)", pointsOptions.Format)
		}

		palette, err := style.ParsePalette(pointsOptions.Palette)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client := newHTTPClient()

		ds, err := sheet.NewLoader(client).Load(ctx, args[0])
		if err != nil {
			return err
		}

		log.Printf("📄 Loaded %s: %s rows, %d columns", args[0], textutils.FormatInt(int64(len(ds.Rows))), len(ds.Headers))

		mapper, err := newMapper(ctx, client)
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			Mapping:     columns.Mapping{Lat: pointsOptions.Lat, Lng: pointsOptions.Lng},
			StyleColumn: pointsOptions.StyleColumn,
			Palette:     palette,
			Filter:      style.Selection{Column: pointsOptions.FilterColumn, Values: pointsOptions.Filter},
			Selected:    pointsOptions.Selected,
		}

		res := pipeline.New(mapper).Run(ctx, ds, opts)
		log.Printf("🧭 Coordinates from %q / %q (%s): %s points, %s visible",
			res.Detection.Mapping.Lat, res.Detection.Mapping.Lng, res.Detection.Source,
			textutils.FormatInt(int64(len(res.Points))), textutils.FormatInt(int64(len(res.Visible))))

		if pointsOptions.Persist {
			if err := persist(args[0], ds, res, opts.StyleColumn); err != nil {
				return err
			}
		}

		switch pointsOptions.Format {
		case "geojson":
			return writeJSON(os.Stdout, res.GeoJSON())
		case "csv":
			return writeCSV(os.Stdout, ds, res)
		default:
			return writeJSON(os.Stdout, pointViews(res))
		}
	},
}

func pointViews(res *pipeline.Result) []server.PointView {
	out := make([]server.PointView, len(res.Visible))
	for i, p := range res.Visible {
		out[i] = server.PointView{Index: p.Index, Lat: p.Lat, Lng: p.Lng, Color: res.Colors[i], Row: p.Row}
	}

	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// writeCSV writes the visible points followed by every source column.
func writeCSV(w io.Writer, ds *sheet.Dataset, res *pipeline.Result) error {
	out := csv.NewWriter(w)

	header := append([]string{"row", "lat", "lng", "color"}, ds.Headers...)
	if err := out.Write(header); err != nil {
		return err
	}

	for i, p := range res.Visible {
		record := make([]string, 0, len(header))
		record = append(record,
			strconv.Itoa(p.Index),
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lng, 'f', -1, 64),
			res.Colors[i],
		)

		for _, h := range ds.Headers {
			record = append(record, style.CellValue(p.Row, h))
		}

		if err := out.Write(record); err != nil {
			return err
		}
	}

	out.Flush()

	return out.Error()
}

func persist(source string, ds *sheet.Dataset, res *pipeline.Result, styleColumn string) error {
	db, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(res.Visible),
			progressbar.OptionSetDescription("Storing points"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	stored := &store.Dataset{
		Source:      source,
		Mapping:     res.Detection.Mapping,
		StyleColumn: styleColumn,
		Rows:        len(ds.Rows),
	}

	progress := func() {
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if err := repo.SaveDataset(stored, res.Visible, res.Colors, progress); err != nil {
		return fmt.Errorf("storing dataset: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	log.Printf("💾 Stored %s points as dataset %s", textutils.FormatInt(int64(stored.Points)), stored.ID)

	return nil
}

func init() {
	rootCmd.AddCommand(pointsCmd)
	pointsCmd.Flags().StringVar(&pointsOptions.Lat, "lat", "", "Latitude column (skips detection)")
	pointsCmd.Flags().StringVar(&pointsOptions.Lng, "lng", "", "Longitude column; the same as --lat for combined \"lat, lng\" cells")
	pointsCmd.Flags().StringVar(&pointsOptions.Format, "format", "json", "Output format: json, geojson or csv")
	pointsCmd.Flags().StringVar(&pointsOptions.StyleColumn, "style-column", "", "Color points by the values of this column")
	pointsCmd.Flags().StringSliceVar(&pointsOptions.Palette, "palette", nil, "Comma separated #rrggbb colors for --style-column, or \"auto\" for one generated color per value")
	pointsCmd.Flags().StringVar(&pointsOptions.FilterColumn, "filter-column", "", "Only show points whose value in this column is one of --filter")
	pointsCmd.Flags().StringSliceVar(&pointsOptions.Filter, "filter", nil, "Values of --filter-column to show")
	pointsCmd.Flags().IntVar(&pointsOptions.Selected, "select", pipeline.NoSelection, "Highlight the point of this row index")
	pointsCmd.Flags().BoolVar(&pointsOptions.Persist, "persist", false, "Store the visible points under --db-path")
}
