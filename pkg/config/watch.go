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

package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Values returns a copy of the currently loaded values.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals
}

// Watch reloads the config file whenever it changes on disk and calls
// onChange with the values before and after the reload. The parent
// directory is watched rather than the file because most editors replace
// the file on save. Watch blocks until ctx is done.
func (c *Instance) Watch(ctx context.Context, onChange func(prev, next Values)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing config watcher")
		}
	}()

	dir := filepath.Dir(c.cfgPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config dir (%s): %w", dir, err)
	}
	log.Debug().Str("dir", dir).Msg("watching config for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.cfgPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			prev := c.Values()
			if err := c.Load(); err != nil {
				log.Error().Err(err).Msg("error reloading config")
				continue
			}
			log.Info().Msg("config reloaded from disk")
			if onChange != nil {
				onChange(prev, c.Values())
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(watchErr).Msg("error in config watcher")
		}
	}
}
