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
	"errors"

	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
	"github.com/tombee/exprmigrate/pkg/legacy"
)

// Error codes for structured JSON output
const (
	// Conversion errors (E001-E099)
	ErrorCodeSyntax          = "E001" // Legacy expression does not parse
	ErrorCodeShape           = "E002" // Parsed, but not a conditional chain of names
	ErrorCodeUnknownOperator = "E003" // Operator has no ternary equivalent
	ErrorCodeUnknownNode     = "E004" // Construct has no ternary equivalent

	// Document errors (E100-E199)
	ErrorCodeInvalidDocument = "E101" // Trigger document does not decode
	ErrorCodeFileNotFound    = "E102" // Trigger document missing
	ErrorCodeInvalidTrigger  = "E103" // Trigger or expression fails validation

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Config file or environment invalid

	// Migration results (E300-E399)
	ErrorCodeLegacyFound = "E301" // migrate --check found legacy syntax

	// Everything else (E400-E499)
	ErrorCodeInternal = "E402" // Unclassified error
)

// ErrorCode classifies err for JSON output.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var convErr *legacy.ConvertError
	if errors.As(err, &convErr) {
		switch convErr.Kind() {
		case legacy.KindSyntax:
			return ErrorCodeSyntax
		case legacy.KindShape:
			return ErrorCodeShape
		case legacy.KindUnknownOperator:
			return ErrorCodeUnknownOperator
		case legacy.KindUnknownNode:
			return ErrorCodeUnknownNode
		}
	}

	var (
		docErr      *pkgerrors.DocumentError
		notFoundErr *pkgerrors.NotFoundError
		validErr    *pkgerrors.ValidationError
		configErr   *pkgerrors.ConfigError
		exitErr     *ExitError
	)
	switch {
	case errors.As(err, &docErr):
		return ErrorCodeInvalidDocument
	case errors.As(err, &notFoundErr):
		return ErrorCodeFileNotFound
	case errors.As(err, &validErr):
		return ErrorCodeInvalidTrigger
	case errors.As(err, &configErr):
		return ErrorCodeInvalidConfig
	case errors.As(err, &exitErr) && exitErr.Code == ExitLegacyFound:
		return ErrorCodeLegacyFound
	}
	return ErrorCodeInternal
}
