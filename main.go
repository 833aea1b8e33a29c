// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion
//
// Standlink - GINA test stand command and telemetry link.

package main

import (
	"os"

	"github.com/gina-propulsion/standlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
