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

// Package config loads the administrator's TOML configuration file into a
// domain.Config, applying defaults for every field except token and org, per
// spec.md §3.
package config

import "github.com/nabbar/sectora/internal/domain"

// EnvConfigPath is the environment variable that overrides the well-known
// config file location, per spec.md §6.
const EnvConfigPath = "SECTORA_CONFIG"

// DefaultPath is the well-known administrator config path.
const DefaultPath = "/etc/sectora.conf"

func applyDefaults(c *domain.Config) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.github.com"
	}
	if c.HomeTemplate == "" {
		c.HomeTemplate = "/home/{}"
	}
	if c.DefaultShell == "" {
		c.DefaultShell = "/bin/bash"
	}
	if c.CacheDuration == 0 {
		c.CacheDuration = 3600
	}
	if c.CacheDir == "" {
		c.CacheDir = "/var/cache/sectora"
	}
	if c.UserConfPath == "" {
		c.UserConfPath = ".sectora.conf"
	}
	if c.DaemonSocketPath == "" {
		c.DaemonSocketPath = "/var/run/sectora/sectora.sock"
	}
	if c.ClientSocketDir == "" {
		c.ClientSocketDir = "/var/run/sectora/clients"
	}
	if c.TrustStorePath == "" {
		c.TrustStorePath = "/etc/ssl/certs/ca-certificates.crt"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	if c.Log.Tag == "" {
		c.Log.Tag = "sectora"
	}
}
