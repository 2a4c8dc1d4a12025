// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/sheetmap/pipeline"
	"github.com/jcodagnone/sheetmap/server"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/store"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	Addr  string
	Store bool
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the map API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := newHTTPClient()

		mapper, err := newMapper(cmd.Context(), client)
		if err != nil {
			return err
		}

		var repo store.Repository

		if serveOptions.Store {
			db, r, err := openRepository()
			if err != nil {
				return err
			}
			defer db.Close()

			repo = r
		}

		s := server.NewServer(sheet.NewLoader(client), pipeline.New(mapper), repo)

		fmt.Printf("📍 Open http://%s/api/datasets\n", displayAddr(serveOptions.Addr))

		return s.Run(serveOptions.Addr)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}

	return addr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveOptions.Store, "store", false, "Enable persisting datasets under --db-path")
}
