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

// Package applog wires logrus to the local syslog AUTH facility, severity
// filtered by the LOG_LEVEL environment variable, per spec.md §6.
package applog

import (
	"io"
	"log/syslog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps the LOG_LEVEL vocabulary (OFF|ERROR|WARN|INFO|DEBUG|TRACE)
// onto a logrus level. OFF has no logrus equivalent; callers check Disabled
// instead of relying on a logrus.Level return for it.
func ParseLevel(s string) (level logrus.Level, disabled bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return 0, true
	case "ERROR":
		return logrus.ErrorLevel, false
	case "WARN":
		return logrus.WarnLevel, false
	case "DEBUG":
		return logrus.DebugLevel, false
	case "TRACE":
		return logrus.TraceLevel, false
	case "INFO", "":
		return logrus.InfoLevel, false
	default:
		return logrus.InfoLevel, false
	}
}

// New builds a logrus.Logger that logs to the local syslog AUTH facility
// under tag, filtered to the level named by the LOG_LEVEL environment
// variable (default INFO). A LOG_LEVEL of OFF returns a logger with all
// hooks and output disabled.
func New(tag string) *logrus.Logger {
	log := logrus.New()
	level, disabled := ParseLevel(os.Getenv("LOG_LEVEL"))
	if disabled {
		log.SetOutput(io.Discard)
		return log
	}

	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	w, err := syslog.New(syslog.LOG_AUTH|syslog.LOG_INFO, tag)
	if err != nil {
		// No local syslog daemon reachable; fall back to stderr rather than
		// losing log output entirely.
		return log
	}
	log.AddHook(newSyslogHook(w))
	return log
}
