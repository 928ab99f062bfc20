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

// Package gamesdb is the sqlite backed store of game records and their
// accumulated playtime.
package gamesdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("GamesDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

type GamesDB struct {
	sql   *sql.DB
	ctx   context.Context
	clock clockwork.Clock
}

var _ database.GamesDBI = (*GamesDB)(nil)

// OpenGamesDB opens (creating if needed) the games database in dataDir and
// brings its schema up to date.
func OpenGamesDB(ctx context.Context, dataDir string) (*GamesDB, error) {
	dbPath := filepath.Join(dataDir, config.GamesDbFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &GamesDB{sql: sqlInstance, ctx: ctx, clock: clockwork.NewRealClock()}
	if err := db.MigrateUp(); err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	return db, nil
}

// NewWithSQL wraps an existing connection. Used by tests with sqlmock or
// an in-memory database.
func NewWithSQL(ctx context.Context, sqlDB *sql.DB, clock clockwork.Clock) *GamesDB {
	return &GamesDB{sql: sqlDB, ctx: ctx, clock: clock}
}

func (db *GamesDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return database.MigrateUp(db.ctx, db.sql, migrationFiles, migrationDir)
}

func (db *GamesDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (db *GamesDB) GetGame(id string) (*database.Game, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetGame(db.ctx, db.sql, id)
}

func (db *GamesDB) SaveGame(game *database.Game) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlSaveGame(db.ctx, db.sql, game)
}

func (db *GamesDB) UpdatePlaytime(id string, seconds int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	today := db.clock.Now().Local().Format(database.PlayDateLayout)
	return sqlUpdatePlaytime(db.ctx, db.sql, id, seconds, today)
}

func (db *GamesDB) UpdateLastPlayed(id string) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpdateLastPlayed(db.ctx, db.sql, id, db.clock.Now().Unix())
}

func (db *GamesDB) SetFirstPlayed(id string) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlSetFirstPlayed(db.ctx, db.sql, id, db.clock.Now().Unix())
}
