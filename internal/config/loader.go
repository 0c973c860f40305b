/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package config

import (
	"os"

	"github.com/pelletier/go-toml"

	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/kind"
)

// Path resolves the configuration file path: the environment override if
// set, else DefaultPath.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and decodes the TOML file at path into a domain.Config,
// applies defaults, and validates the two required fields.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kind.Wrap(kind.ConfigInvalid, "read config: "+path, err)
	}

	cfg := &domain.Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, kind.Wrap(kind.ConfigInvalid, "parse config: "+path, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUserConfig reads an optional per-user override file at path. Absence
// is not an error, per spec.md §3: it returns (nil, nil).
func LoadUserConfig(path string) (*domain.UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kind.Wrap(kind.ConfigInvalid, "read user config: "+path, err)
	}

	uc := &domain.UserConfig{}
	if err := toml.Unmarshal(data, uc); err != nil {
		return nil, kind.Wrap(kind.ConfigInvalid, "parse user config: "+path, err)
	}
	return uc, nil
}
