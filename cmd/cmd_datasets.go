// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jcodagnone/sheetmap/utils/textutils"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect the stored datasets",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored datasets",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		datasets, err := repo.ListDatasets()
		if err != nil {
			return fmt.Errorf("listing datasets: %w", err)
		}

		a, b, c, d := strings.Repeat("─", 36), strings.Repeat("─", 8), strings.Repeat("─", 8), strings.Repeat("─", 40)
		fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
		fmt.Printf("│ %-36s │ %8s │ %8s │ %-40s │\n", "Id", "Rows", "Points", "Source")
		fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

		for _, ds := range datasets {
			fmt.Printf("│ %-36s │ %8s │ %8s │ %-40s │\n",
				ds.ID,
				textutils.FormatInt(int64(ds.Rows)),
				textutils.FormatInt(int64(ds.Points)),
				textutils.Truncate(ds.Source, 40))
		}

		fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)

		return nil
	},
}

var cellsResolution int

var datasetsCellsCmd = &cobra.Command{
	Use:   "cells <id>",
	Short: "Count the points of a stored dataset per h3 cell",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := repo.GetDataset(args[0]); err != nil {
			return err
		}

		counts, err := repo.CellCounts(args[0], cellsResolution)
		if err != nil {
			return err
		}

		return writeJSON(os.Stdout, counts)
	},
}

var datasetsPointsCmd = &cobra.Command{
	Use:   "points <id>",
	Short: "Print the stored points of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		pts, err := repo.ListPoints(args[0])
		if err != nil {
			return err
		}

		return writeJSON(os.Stdout, pts)
	},
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored dataset and its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.DeleteDataset(args[0]); err != nil {
			return err
		}

		fmt.Printf("✅ Deleted dataset %s\n", args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsCellsCmd)
	datasetsCmd.AddCommand(datasetsPointsCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
	datasetsCellsCmd.Flags().IntVar(&cellsResolution, "res", 6, "h3 resolution: 4, 6 or 8")
}
