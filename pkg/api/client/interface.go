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

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
)

// APIClient is the subset of the API the CLI needs.
type APIClient interface {
	Call(ctx context.Context, method, params string) (string, error)
	WaitNotification(ctx context.Context, timeout time.Duration, method string) (string, error)
}

type LocalAPIClient struct {
	cfg     *config.Instance
	timeout time.Duration
}

// NewLocalAPIClient returns a client for the service on this machine.
// timeout follows LocalClient semantics.
func NewLocalAPIClient(cfg *config.Instance, timeout time.Duration) *LocalAPIClient {
	return &LocalAPIClient{cfg: cfg, timeout: timeout}
}

func (c *LocalAPIClient) Call(ctx context.Context, method, params string) (string, error) {
	resp, err := LocalClient(ctx, c.cfg, c.timeout, method, params)
	if err != nil {
		return "", fmt.Errorf("api call failed: %w", err)
	}
	return resp, nil
}

func (c *LocalAPIClient) WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	method string,
) (string, error) {
	resp, err := WaitNotification(ctx, c.cfg, timeout, method)
	if err != nil {
		return "", fmt.Errorf("wait notification failed: %w", err)
	}
	return resp, nil
}
