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

// Package validation validates API request parameters using
// go-playground/validator with validators for Tadoku's own types.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

var (
	gameIDPattern   = regexp.MustCompile(`^v[1-9][0-9]*$`)
	windowsAbsolute = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// Validator handles validation of API parameters.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("gameid", validateGameID)
	_ = v.RegisterValidation("abspath", validateAbsPath)
	_ = v.RegisterValidation("playtimemode", validatePlaytimeMode)
	_ = v.RegisterValidation("presencemode", validatePresenceMode)

	return &Validator{validate: v}
}

// DefaultValidator is a shared validator instance for API use.
var DefaultValidator = NewValidator()

// Validate validates a struct and returns a formatted error if validation
// fails.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal unmarshals JSON params and validates them.
// Returns ErrMissingParams if params is empty, ErrInvalidParams if unmarshal
// fails, or an Error if validation fails.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return ErrInvalidParams
	}
	return DefaultValidator.Validate(dest)
}

// validateGameID checks for a VNDB visual novel ID such as v17.
func validateGameID(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return gameIDPattern.MatchString(val)
}

// validateAbsPath accepts absolute paths of the host and Windows style
// drive paths, which are stored verbatim regardless of host.
func validateAbsPath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return filepath.IsAbs(val) || windowsAbsolute.MatchString(val)
}

func validatePlaytimeMode(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || config.PlaytimeMode(val).Valid()
}

func validatePresenceMode(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || config.PresenceMode(val).Valid()
}
