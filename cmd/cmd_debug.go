// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/jcodagnone/sheetmap/coords"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize coordinate values, one per line",
	Long: `Reads one raw coordinate per line and prints it followed by the value
sheetmap would plot, or "null" when it has none.

$ printf '48,85\n35.8952 S\n14,4,2\n' | sheetmap debug normalize
48,85		48.85
35.8952 S	-35.8952
14,4,2		null
	`,
	Run: func(_ *cobra.Command, _ []string) {
		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter coordinates to normalize, one per line…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			raw := scanner.Text()

			out := "null"
			if v, ok := coords.Normalize(raw); ok {
				out = strconv.FormatFloat(v, 'f', -1, 64)
			}

			sep := "\t"
			if len(raw) < 8 {
				sep = "\t\t"
			}

			fmt.Printf("%s%s%s\n", raw, sep, out)
		}

		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}
	},
}

var debugSheetFormat string

var debugSheetCmd = &cobra.Command{
	Use:   "sheet [file]",
	Short: "Decode a spreadsheet export and print it as JSON",
	Long: `Reads a spreadsheet export from a file or from stdin and prints the headers
and rows sheetmap sees.

Examples:
  curl -s "$PUBLISHED_SHEET_URL" | sheetmap debug sheet --format html
  sheetmap debug sheet stations.tsv`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		var (
			ds  *sheet.Dataset
			err error
		)

		if len(args) > 0 && debugSheetFormat == "" {
			ds, err = sheet.LoadFile(args[0])
		} else {
			var r io.Reader = os.Stdin

			if len(args) > 0 {
				f, openErr := os.Open(args[0])
				if openErr != nil {
					log.Fatalf("error opening file: %v", openErr)
				}
				defer f.Close()

				r = f
			} else if isatty.IsTerminal(os.Stdin.Fd()) {
				fmt.Fprintln(os.Stderr, "Paste the sheet and finish with Ctrl-D…")
			}

			ds, err = sheet.Decode(r, formatFlag(debugSheetFormat))
		}

		if err != nil {
			log.Fatalf("error reading sheet: %v", err)
		}

		if err := writeJSON(os.Stdout, ds); err != nil {
			log.Fatal(err)
		}
	},
}

func formatFlag(name string) sheet.Format {
	for _, f := range []sheet.Format{sheet.FormatCSV, sheet.FormatTSV, sheet.FormatXLSX, sheet.FormatHTML} {
		if f.String() == name {
			return f
		}
	}

	return sheet.FormatUnknown
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugNormalizeCmd)
	debugCmd.AddCommand(debugSheetCmd)
	debugSheetCmd.Flags().StringVar(&debugSheetFormat, "format", "", "csv, tsv, xlsx or html (default from the file extension, csv for stdin)")
}
