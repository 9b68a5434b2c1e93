// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"algcore/cmd"
	applog "algcore/internal/log"
	"algcore/pkg/build"
)

// main wires process concerns around the command tree:
//
//  1. Build information from linker flags or the embedded module data
//  2. A context cancelled by SIGINT or SIGTERM, so a paced replay stops
//     cleanly and still closes its session
//  3. Command dispatch, with errors logged and mapped to exit status 1
func main() {
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build information incomplete: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		applog.Errorf("%v", err)
	}
	_ = applog.Sync()
	if err != nil {
		os.Exit(1)
	}
}
