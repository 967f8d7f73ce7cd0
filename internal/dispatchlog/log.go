// Package dispatchlog is a minimal leveled logger for compiler diagnostics
// (tree construction, pruning decisions, fall-through computation). It
// deliberately avoids a logging framework dependency, matching the
// teacher's preference for small stdlib-based ambient plumbing over
// heavyweight libraries for concerns orthogonal to the core.
package dispatchlog

import (
	"fmt"
	"os"
)

// Verbose gates Debugf output. Off by default; compilers that want a
// trace of their build decisions set this before calling Compile.
var Verbose = false

// Debugf writes a debug line to stderr, prefixed with "dispatch: ", when
// Verbose is set.
func Debugf(format string, args ...any) {
	if !Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "dispatch: "+format+"\n", args...)
}
