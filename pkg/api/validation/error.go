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

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error carries one entry per failed field. Its message is what API
// clients see in the JSON-RPC error.
type Error struct {
	Fields []FieldError
}

type FieldError struct {
	Value   any
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var sb strings.Builder
	for i, fe := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fe.Message)
	}
	return sb.String()
}

func NewError(errs validator.ValidationErrors) *Error {
	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return &Error{Fields: fields}
}

// tagMessages maps a validation tag to a message template taking the
// lowercased field name and the tag parameter.
var tagMessages = map[string]string{
	"required":     "%[1]s is required",
	"abspath":      "%[1]s must be an absolute path",
	"url":          "%[1]s must be a valid URL",
	"playtimemode": "%[1]s must be one of: classic exstatic",
	"presencemode": "%[1]s must be one of: all in_game none",
	"oneof":        "%[1]s must be one of: %[2]s",
	"min":          "%[1]s must be at least %[2]s",
	"max":          "%[1]s must be at most %[2]s",
	"gte":          "%[1]s must be %[2]s or more",
	"lte":          "%[1]s must be %[2]s or less",
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if fe.Tag() == "gameid" {
		return fmt.Sprintf("%s %q is not a VNDB ID (e.g. v17)", field, fe.Value())
	}
	if tmpl, ok := tagMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
