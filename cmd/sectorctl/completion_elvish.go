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

package main

import (
	"io"
	"strings"
)

// elvishCompletionTemplate drives the hidden "__complete" command every
// Cobra v1.x binary exposes, since Cobra itself ships generators for
// bash/zsh/fish/powershell only, never elvish.
const elvishCompletionTemplate = `# Elvish completion for __PROG__.
# Cobra has no built-in Elvish generator, so this shells out to the
# "__complete" command Cobra attaches to every command tree.
use str

set edit:completion:arg-completer[__PROG__] = {|@words|
	var n = (count $words)
	var cur = $words[(- $n 1)]
	var args = $words[1..(- $n 1)]
	try {
		var @lines = (__PROG__ __complete $@args $cur 2>/dev/null)
		for line $lines {
			if (not (str:has-prefix $line ':')) {
				var @fields = (str:split "\t" $line)
				edit:complex-candidate $fields[0]
			}
		}
	} catch {
		# __complete unavailable or returned non-zero; no candidates.
	}
}
`

// genElvishCompletion writes an elvish completion script for prog to w.
func genElvishCompletion(w io.Writer, prog string) error {
	script := strings.ReplaceAll(elvishCompletionTemplate, "__PROG__", prog)
	_, err := io.WriteString(w, script)
	return err
}
