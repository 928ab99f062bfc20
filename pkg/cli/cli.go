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

// Package cli holds the command line flags shared by every build and the
// process setup that runs before the service starts.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"

	"github.com/Eroge-Abyss/tadoku/internal/telemetry"
	"github.com/Eroge-Abyss/tadoku/pkg/api/client"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers"
	"github.com/rs/zerolog/log"
)

var ErrFlagValue = errors.New("flag requires a value")

type Flags struct {
	Launch  *string
	API     *string
	Params  *string
	Daemon  *bool
	Close   *bool
	Stop    *bool
	Version *bool
	fs      *flag.FlagSet
}

// SetupFlags defines the flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the service in the foreground with console logging",
		),
		Launch: fs.String(
			"launch",
			"",
			"launch a game by VNDB id (e.g. v17) and wait until it is tracked",
		),
		Close: fs.Bool(
			"close",
			false,
			"close the running game and end its session",
		),
		Stop: fs.Bool(
			"stop",
			false,
			"stop tracking the running game without closing it",
		),
		API: fs.String(
			"api",
			"",
			"send a method to the API and print the response",
		),
		Params: fs.String(
			"params",
			"",
			"JSON params for -api",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func (f *Flags) passed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and handles flags that need no environment. It reports
// whether the process should exit.
func (f *Flags) Pre(args []string, out io.Writer) (exit bool, err error) {
	if err := f.fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}
	if *f.Version {
		_, _ = fmt.Fprintf(out, "Tadoku v%s (%s)\n", config.AppVersion, runtime.GOOS)
		return true, nil
	}
	return false, nil
}

// Post runs client flags against an already running service. It reports
// whether a client flag was handled, in which case the process should exit
// instead of starting the service.
func (f *Flags) Post(ctx context.Context, api client.APIClient, out io.Writer) (handled bool, err error) {
	call := func(method, params string) error {
		resp, err := api.Call(ctx, method, params)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("error calling API")
			return fmt.Errorf("error calling %s: %w", method, err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return nil
	}

	switch {
	case f.passed("launch"):
		if *f.Launch == "" {
			return true, fmt.Errorf("launch: %w", ErrFlagValue)
		}
		data, err := json.Marshal(models.LaunchParams{GameID: *f.Launch, Wait: true})
		if err != nil {
			return true, fmt.Errorf("error encoding params: %w", err)
		}
		return true, call(models.MethodLaunch, string(data))
	case *f.Close:
		return true, call(models.MethodClose, "")
	case *f.Stop:
		return true, call(models.MethodStop, "")
	case f.passed("api"):
		if *f.API == "" {
			return true, fmt.Errorf("api: %w", ErrFlagValue)
		}
		return true, call(*f.API, *f.Params)
	}
	return false, nil
}

// Setup creates the app directories, starts logging and loads the config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) (*config.Instance, error) {
	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if err := helpers.InitLogging(helpers.DataDir(), cfg.DebugLogging(), writers...); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.ErrorReportingDSN(),
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
