// Tadoku
// Copyright (c) 2025 The Tadoku Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Tadoku.
//
// Tadoku is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tadoku is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tadoku.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eroge-Abyss/tadoku/internal/telemetry"
	"github.com/Eroge-Abyss/tadoku/pkg/api/client"
	"github.com/Eroge-Abyss/tadoku/pkg/cli"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers"
	"github.com/Eroge-Abyss/tadoku/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	exit, err := flags.Pre(os.Args[1:], os.Stdout)
	if err != nil || exit {
		return err
	}

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{helpers.ConsoleWriter()}
	}

	cfg, err := cli.Setup(config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Fatal().Msgf("panic: %v", r)
		}
	}()

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	handled, err := flags.Post(ctx, client.NewLocalAPIClient(cfg, -1), os.Stdout)
	if handled {
		return err
	}

	stopSvc, done, err := service.Start(cfg, service.Options{})
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}
	log.Info().Str("api", cfg.APIListen()).Msg("service started")

	select {
	case <-ctx.Done():
		log.Info().Msg("received stop signal")
	case <-done:
		return errors.New("service stopped unexpectedly")
	}

	if err := stopSvc(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("error stopping service: %w", err)
	}
	return nil
}
