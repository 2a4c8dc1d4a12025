// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/spf13/cobra"
)

// ColumnsReport is what the columns command prints.
type ColumnsReport struct {
	Headers   []string        `json:"headers"`
	Mapping   columns.Mapping `json:"mapping"`
	Source    columns.Source  `json:"source"`
	Heuristic columns.Mapping `json:"heuristic"`
	Sample    []sheet.Row     `json:"sample"`
}

var columnsCmd = &cobra.Command{
	Use:   "columns <file or url>",
	Short: "Show which columns would be read as coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newHTTPClient()

		ds, err := sheet.NewLoader(client).Load(ctx, args[0])
		if err != nil {
			return err
		}

		mapper, err := newMapper(ctx, client)
		if err != nil {
			return err
		}

		sample := ds.Sample(columns.MaxSampleSize)
		detection := mapper.Detect(ctx, ds.Headers, sample)

		return writeJSON(os.Stdout, ColumnsReport{
			Headers:   ds.Headers,
			Mapping:   detection.Mapping,
			Source:    detection.Source,
			Heuristic: columns.Heuristic(ds.Headers, mapper.Candidates),
			Sample:    sample,
		})
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
