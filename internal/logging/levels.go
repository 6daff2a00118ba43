// Copyright 2022 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
)

// ParseLogLevel parses a level specification such as "info" or
// "error;message=debug;zerocopy=info". An entry without a module, or with the
// module "*", sets the default level.
func ParseLogLevel(s string) (SlogConfig, error) {
	cfg := SlogConfig{DefaultLevel: slog.LevelInfo}
	modules := strings.FieldsFunc(s, func(r rune) bool { return r == ';' })
	for _, module := range modules {
		parts := strings.Split(module, "=")
		if len(parts) > 2 {
			return SlogConfig{}, errors.BadRequest.WithFormat("invalid log level %q", module)
		}

		level, err := zerolog.ParseLevel(strings.TrimSpace(parts[len(parts)-1]))
		if err != nil {
			return SlogConfig{}, errors.BadRequest.WithCauseAndFormat(err, "invalid log level %q", module)
		}

		name := strings.TrimSpace(parts[0])
		if len(parts) == 1 || name == "*" {
			cfg.DefaultLevel = slogLevel(level)
			continue
		}

		if cfg.ModuleLevels == nil {
			cfg.ModuleLevels = map[string]slog.Level{}
		}
		cfg.ModuleLevels[name] = slogLevel(level)
	}
	return cfg, nil
}
