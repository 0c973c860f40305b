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

package domain

// ResolveShell implements spec.md §4.C's shell-override rule: the per-user
// override applies only if both the override file was present (userConf !=
// nil) and the shell path it names actually exists on disk; otherwise the
// config default applies. fileExists is injected so callers can test this
// rule without touching the real filesystem.
func ResolveShell(cfg *Config, userConf *UserConfig, fileExists func(string) bool) string {
	if userConf != nil && userConf.Shell != nil && fileExists(*userConf.Shell) {
		return *userConf.Shell
	}
	return cfg.DefaultShell
}

// ResolvePasswd returns the per-user override shadow password string if
// present, else the disabled-password placeholder "*".
func ResolvePasswd(userConf *UserConfig) string {
	if userConf != nil && userConf.Passwd != nil {
		return *userConf.Passwd
	}
	return "*"
}
