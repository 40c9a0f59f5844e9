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
	"io"
	"log/slog"

	"github.com/tombee/exprmigrate/internal/config"
	"github.com/tombee/exprmigrate/internal/log"
)

// LoadConfig loads the file named by --config, or the default config file
// when it exists. Failures exit with ExitInvalidInput.
func LoadConfig() (*config.Config, error) {
	path, err := config.ResolvePath(GetConfigPath())
	if err != nil {
		return nil, NewInvalidInputError("locating config file", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, NewInvalidInputError("", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger writing to w. --verbose lowers the
// level to debug and --quiet raises it to error.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logCfg := cfg.LoggerConfig()
	logCfg.Output = w
	switch {
	case GetQuiet():
		logCfg.Level = "error"
	case GetVerbose() && log.ParseLevel(logCfg.Level) > slog.LevelDebug:
		logCfg.Level = "debug"
	}
	return log.New(logCfg)
}
