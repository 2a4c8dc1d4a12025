// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/sheetmap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
