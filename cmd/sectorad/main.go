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

// Command sectorad is the privileged resolver daemon of spec.md §4.E: it
// loads the administrator configuration, builds the remote client and the
// dispatcher, and serves the Unix datagram socket until signalled to stop.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nabbar/sectora/internal/applog"
	"github.com/nabbar/sectora/internal/config"
	"github.com/nabbar/sectora/internal/daemon"
	"github.com/nabbar/sectora/internal/remote"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// The config's log level applies unless LOG_LEVEL overrides it.
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		_ = os.Setenv("LOG_LEVEL", cfg.Log.Level)
	}
	log := applog.New(cfg.Log.Tag)

	client, err := remote.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("build remote client")
	}

	d := daemon.New(cfg, client, log, config.LoadUserConfig)
	srv := daemon.NewServer(d, log, cfg.DaemonSocketPath, cfg.ClientSocketDir)

	if err := srv.Listen(); err != nil {
		log.WithError(err).Fatal("bind daemon socket")
	}

	log.WithField("socket", cfg.DaemonSocketPath).Info("sectora daemon starting")
	if err := srv.Run(context.Background()); err != nil {
		log.WithError(err).Fatal("daemon loop exited with error")
	}
	log.Info("sectora daemon stopped")
}
