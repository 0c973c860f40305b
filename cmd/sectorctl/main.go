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

// Command sectorctl is the administrator-facing control CLI of spec.md
// §4.G: thin subcommands over the same datagram client path the NSS module
// uses, plus a daemon-free config check.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nabbar/sectora/internal/buildinfo"
	"github.com/nabbar/sectora/internal/config"
	"github.com/nabbar/sectora/internal/nssclient"
	"github.com/nabbar/sectora/internal/wire"
)

// Exit codes per spec.md §6.
const (
	exitSuccess     = 0
	exitPamDenied   = 1
	exitCheckFailed = 11
	exitKeyFailed   = 21
	exitPamFailed   = 31
	exitNoPamUser   = 41
	exitCleanupFail = 51
	exitRateLimit   = 61
	// exitUsage is for cobra's own argument/usage validation errors, which
	// precede any subcommand RunE and so carry none of the specific failure
	// categories above.
	exitUsage = 2
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sectorctl",
		Short: "Control CLI for the sectora resolver daemon",
	}
	root.AddCommand(
		newKeyCmd(),
		newPamCmd(),
		newCheckCmd(),
		newCleanupCmd(),
		newRateLimitCmd(),
		newVersionCmd(),
		newCompletionCmd(root),
	)
	// Cobra's own default completion command only covers bash/zsh/fish/
	// powershell; spec.md §4.G also names elvish, which newCompletionCmd
	// handles by hand, so the default is disabled to avoid two competing
	// "completion" commands.
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// newCompletionCmd covers the five shells spec.md §4.G names. Four of them
// are Cobra v1.8.0's own generators; Cobra has no Elvish generator, so
// elvish is produced by genElvishCompletion instead.
func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell|elvish]",
		Short:     "Generate a shell completion script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell", "elvish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			case "elvish":
				return genElvishCompletion(out, root.Name())
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

func dial() (*nssclient.Client, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, err
	}
	return nssclient.Dial(cfg.ClientSocketDir, cfg.DaemonSocketPath)
}

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <user>",
		Short: "Print a user's public keys, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := dial()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitKeyFailed)
			}
			defer cli.Close()

			reply, err := cli.Call(wire.KeyRequest{Login: args[0]})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitKeyFailed)
			}
			for _, k := range reply.(wire.KeyReply).Keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newPamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pam",
		Short: "Check PAM_USER against the resolved membership union",
		RunE: func(cmd *cobra.Command, args []string) error {
			login := os.Getenv("PAM_USER")
			if login == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "PAM_USER is not set")
				os.Exit(exitNoPamUser)
			}

			cli, err := dial()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitPamFailed)
			}
			defer cli.Close()

			reply, err := cli.Call(wire.PamRequest{Login: login})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitPamFailed)
			}
			if !reply.(wire.PamReply).Allowed {
				os.Exit(exitPamDenied)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Parse a config file without contacting the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitCheckFailed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Wipe the daemon's on-disk cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := dial()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitCleanupFail)
			}
			defer cli.Close()

			if _, err := cli.Call(wire.CleanupRequest{}); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitCleanupFail)
			}
			return nil
		},
	}
}

func newRateLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Print the remote service's rate-limit counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := dial()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitRateLimit)
			}
			defer cli.Close()

			reply, err := cli.Call(wire.RateLimitRequest{})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(exitRateLimit)
			}
			rl := reply.(wire.RateLimitReply)
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d reset=%d\n", rl.Remaining, rl.Limit, rl.Reset)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return nil
		},
	}
}
