// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"encoding/json"
	"errors"
	"io"

	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
	"github.com/tombee/exprmigrate/pkg/legacy"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// NewJSONResponse creates the envelope for command.
func NewJSONResponse(command string, success bool) JSONResponse {
	return JSONResponse{Version: "1.0", Command: command, Success: success}
}

// JSONError represents a structured error with code, message, location, and suggestion
type JSONError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Kind       string        `json:"kind,omitempty"`
	Location   *JSONLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// JSONLocation represents a position in an expression or file
type JSONLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewJSONError describes err for JSON output. Syntax errors carry their
// position in the expression.
func NewJSONError(err error) *JSONError {
	if err == nil {
		return nil
	}

	out := &JSONError{
		Code:    ErrorCode(err),
		Message: err.Error(),
	}

	var convErr *legacy.ConvertError
	if errors.As(err, &convErr) {
		out.Kind = string(convErr.Kind())
	}

	var synErr *legacy.SyntaxError
	if errors.As(err, &synErr) {
		out.Location = &JSONLocation{Line: synErr.Position.Line, Column: synErr.Position.Column}
	}

	var userErr pkgerrors.UserVisibleError
	var validErr *pkgerrors.ValidationError
	switch {
	case errors.As(err, &userErr) && userErr.IsUserVisible():
		out.Suggestion = userErr.Suggestion()
	case errors.As(err, &validErr):
		out.Suggestion = validErr.Suggestion
	}

	return out
}

// EmitJSON writes response as indented JSON.
func EmitJSON(w io.Writer, response interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSONError writes a failed response carrying errs.
func EmitJSONError(w io.Writer, command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	return EmitJSON(w, errorResponse{
		JSONResponse: NewJSONResponse(command, false),
		Errors:       errs,
	})
}
