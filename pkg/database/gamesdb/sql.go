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

package gamesdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/database"
)

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

func sqlGetGame(ctx context.Context, db *sql.DB, id string) (*database.Game, error) {
	var game database.Game
	var lastPlayed, firstPlayed sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT ID, Title, ImageURL, ExePath, ProcessPath, IsNSFW,
			Playtime, TodayPlaytime, LastPlayDate, LastPlayed, FirstPlayed
		FROM Games
		WHERE ID = ?;
	`, id).Scan(
		&game.ID,
		&game.Title,
		&game.ImageURL,
		&game.ExePath,
		&game.ProcessPath,
		&game.IsNSFW,
		&game.Playtime,
		&game.TodayPlaytime,
		&game.LastPlayDate,
		&lastPlayed,
		&firstPlayed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", database.ErrGameNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	game.LastPlayed = unixPtr(lastPlayed)
	game.FirstPlayed = unixPtr(firstPlayed)
	return &game, nil
}

// sqlSaveGame inserts or updates the descriptive fields of a game. Playtime
// and timestamps are left alone on update.
func sqlSaveGame(ctx context.Context, db *sql.DB, game *database.Game) error {
	processPath := game.ProcessPath
	if processPath == "" {
		processPath = game.ExePath
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO Games (ID, Title, ImageURL, ExePath, ProcessPath, IsNSFW)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ID) DO UPDATE SET
			Title = excluded.Title,
			ImageURL = excluded.ImageURL,
			ExePath = excluded.ExePath,
			ProcessPath = excluded.ProcessPath,
			IsNSFW = excluded.IsNSFW;
	`,
		game.ID,
		game.Title,
		game.ImageURL,
		game.ExePath,
		processPath,
		game.IsNSFW,
	)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", database.ErrGameNotFound, id)
	}
	return nil
}

// sqlUpdatePlaytime is a single statement so the cumulative total and the
// today total can never disagree about a flush.
func sqlUpdatePlaytime(
	ctx context.Context,
	db *sql.DB,
	id string,
	seconds int64,
	today string,
) error {
	if seconds < 0 {
		return database.ErrNegativePlaytime
	}
	res, err := db.ExecContext(ctx, `
		UPDATE Games SET
			Playtime = Playtime + ?,
			TodayPlaytime = CASE WHEN LastPlayDate = ? THEN TodayPlaytime + ? ELSE ? END,
			LastPlayDate = ?
		WHERE ID = ?;
	`, seconds, today, seconds, seconds, today, id)
	if err != nil {
		return fmt.Errorf("failed to update playtime: %w", err)
	}
	return checkAffected(res, id)
}

func sqlUpdateLastPlayed(ctx context.Context, db *sql.DB, id string, now int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE Games SET LastPlayed = ? WHERE ID = ?;
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to update last played: %w", err)
	}
	return checkAffected(res, id)
}

func sqlSetFirstPlayed(ctx context.Context, db *sql.DB, id string, now int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE Games SET FirstPlayed = ? WHERE ID = ? AND FirstPlayed IS NULL;
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to set first played: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// nothing updated: either already set or no such game
	var exists bool
	err = db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM Games WHERE ID = ?);
	`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check game exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrGameNotFound, id)
	}
	return nil
}
