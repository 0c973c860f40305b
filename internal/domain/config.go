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

// Package domain models the configuration, sector, and membership types the
// daemon resolves lookups against, independent of the wire protocol and the
// remote transport used to populate them.
package domain

import (
	"strings"

	"github.com/nabbar/sectora/internal/kind"
)

// TeamConfig names one remote team to project as a sector-group, with an
// optional local identity override.
type TeamConfig struct {
	Name      string `toml:"name"`
	GID       *uint64 `toml:"gid"`
	GroupName *string `toml:"group_name"`
}

// RepoConfig is the repo-sourced counterpart of TeamConfig; membership comes
// from outside collaborators rather than team members.
type RepoConfig struct {
	Name      string `toml:"name"`
	GID       *uint64 `toml:"gid"`
	GroupName *string `toml:"group_name"`
}

// LogConfig configures the severity filter and syslog tag used by
// internal/applog.
type LogConfig struct {
	Level string `toml:"level"`
	Tag   string `toml:"tag"`
}

// Config is the process-wide immutable record loaded once at startup from
// the administrator's TOML configuration file.
type Config struct {
	Token             string       `toml:"token"`
	Org               string       `toml:"org"`
	Teams             []TeamConfig `toml:"teams"`
	Repos             []RepoConfig `toml:"repos"`
	BaseURL           string       `toml:"base_url"`
	HomeTemplate      string       `toml:"home_template"`
	DefaultShell      string       `toml:"default_shell"`
	CacheDuration     int64        `toml:"cache_duration"`
	CacheDir          string       `toml:"cache_dir"`
	TrustStorePath    string       `toml:"trust_store_path"`
	UserConfPath      string       `toml:"user_conf_path"`
	DaemonSocketPath  string       `toml:"daemon_socket_path"`
	ClientSocketDir   string       `toml:"client_socket_dir"`
	ProxyURL          string       `toml:"proxy_url"`
	Log               LogConfig    `toml:"log"`
}

// Validate checks the two fields that have no sane default (token, org) and
// returns a config-invalid kind.Error naming the first one missing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return kind.New(kind.ConfigInvalid, "token is required")
	}
	if strings.TrimSpace(c.Org) == "" {
		return kind.New(kind.ConfigInvalid, "org is required")
	}
	return nil
}

// HomePath renders the config's home-directory template for login, replacing
// the literal placeholder "{}".
func (c *Config) HomePath(login string) string {
	return strings.ReplaceAll(c.HomeTemplate, "{}", login)
}

// UserConfig is an optional per-user override read from the user's home
// directory; its absence is not an error.
type UserConfig struct {
	Shell  *string `toml:"shell"`
	Passwd *string `toml:"passwd"`
}
