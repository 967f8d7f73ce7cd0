// Command typedfn compiles a YAML signature bundle against a small set
// of demo implementations and prints the resulting dispatcher's
// discrimination tree, colorized when stdout is a terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/typedfn/typedfn/pkg/typedfn"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

func main() {
	bundlePath := flag.String("bundle", "", "path to a YAML signature bundle (signature: implName)")
	flag.Parse()

	if *bundlePath == "" {
		fmt.Fprintln(os.Stderr, "typedfn: -bundle is required")
		os.Exit(2)
	}

	data, err := os.ReadFile(*bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typedfn: %v\n", err)
		os.Exit(1)
	}

	impls := demoImplementations()
	bindings, err := typedfn.LoadYAMLBundle(data, impls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typedfn: %v\n", err)
		os.Exit(1)
	}

	sys := typedfn.New()
	d, err := sys.Compose("demo", bindings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typedfn: %v\n", err)
		os.Exit(1)
	}

	printExplain(d.Explain())
}

func printExplain(s string) {
	if !colorEnabled() {
		fmt.Print(s)
		return
	}
	fmt.Print(ansiBold + s + ansiReset)
}

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// demoImplementations is the fixed symbol table a bundle's implementation
// names resolve against; a real embedder would supply its own via
// typedfngen-generated bindings instead.
func demoImplementations() map[string]any {
	return map[string]any{
		"sum": func(a, b int) int { return a + b },
		"concat": func(strs ...string) string {
			out := ""
			for _, s := range strs {
				out += s
			}
			return out
		},
		"describe": func(v any) string { return fmt.Sprintf("%v", v) },
	}
}
