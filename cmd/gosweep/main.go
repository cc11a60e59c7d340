// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/hashicorp/go-sweep/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the gosweep cli
func main() {
	os.Exit(cmd.Run(version, commit, date))
}
