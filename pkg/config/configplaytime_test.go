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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaytimeMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode PlaytimeMode
		want PlaytimeMode
	}{
		{name: "empty returns foreground", mode: "", want: PlaytimeModeForeground},
		{name: "classic", mode: "classic", want: PlaytimeModeForeground},
		{name: "exstatic", mode: "exstatic", want: PlaytimeModeReport},
		{name: "unknown returns foreground", mode: "bogus", want: PlaytimeModeForeground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst := &Instance{
				vals: Values{
					Playtime: Playtime{Mode: tt.mode},
				},
			}
			assert.Equal(t, tt.want, inst.PlaytimeMode())
		})
	}
}

func TestReportAddress(t *testing.T) {
	t.Parallel()

	inst := &Instance{}
	assert.Equal(t, "127.0.0.1:6969", inst.ReportAddress())

	inst.vals.Playtime.ReportAddress = "127.0.0.1:7000"
	assert.Equal(t, "127.0.0.1:7000", inst.ReportAddress())
}
