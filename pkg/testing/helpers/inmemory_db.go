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

package helpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Eroge-Abyss/tadoku/pkg/database/gamesdb"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestGamesDB opens a migrated games database in a temp dir. The file
// persists across connection close and reopen within the test.
func NewTestGamesDB(t *testing.T, clock clockwork.Clock) *gamesdb.GamesDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "games_test.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	db := gamesdb.NewWithSQL(context.Background(), sqlDB, clock)
	require.NoError(t, db.MigrateUp())
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close GamesDB: %v", err)
		}
	})
	return db
}
