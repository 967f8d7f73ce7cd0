// Command typedfngen scans a Go package for exported functions carrying a
//
//	//typedfn:signature "<signature text>"
//
// directive comment and emits a _typedfn_gen.go file in that package
// registering them as typedfn.Bindings, so ordinary Go functions become
// dispatcher arms without hand-written signature-text/function tables.
//
// Grounded in internal/ext/inspector.go's use of golang.org/x/tools/go/packages
// to load and type-check a target package, and internal/ext/codegen.go's
// templated emission of generated Go source.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const directivePrefix = "//typedfn:signature "

// directive is one discovered //typedfn:signature annotation.
type directive struct {
	FuncName  string
	Signature string
}

func main() {
	dir := flag.String("dir", ".", "directory of the package to scan")
	out := flag.String("out", "_typedfn_gen.go", "generated file name, relative to -dir")
	flag.Parse()

	directives, pkgName, err := scan(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typedfngen: %v\n", err)
		os.Exit(1)
	}
	if len(directives) == 0 {
		fmt.Fprintln(os.Stderr, "typedfngen: no //typedfn:signature directives found, nothing to generate")
		return
	}

	src, err := render(pkgName, directives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typedfngen: %v\n", err)
		os.Exit(1)
	}

	path := *dir + string(os.PathSeparator) + *out
	if err := os.WriteFile(path, src, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "typedfngen: writing %s: %v\n", path, err)
		os.Exit(1)
	}
}

// scan loads the package at dir and collects one directive per exported
// function whose doc comment carries a //typedfn:signature line.
func scan(dir string) ([]directive, string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, "", fmt.Errorf("loading package: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, "", fmt.Errorf("no package found in %s", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, "", fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
	}

	var found []directive
	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			fn, ok := n.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !fn.Name.IsExported() || fn.Doc == nil {
				return true
			}
			sig, ok := signatureFromDoc(fn.Doc)
			if !ok {
				return true
			}
			found = append(found, directive{FuncName: fn.Name.Name, Signature: sig})
			return true
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].FuncName < found[j].FuncName })
	return found, pkg.Name, nil
}

func signatureFromDoc(doc *ast.CommentGroup) (string, bool) {
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, directivePrefix) {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(c.Text, directivePrefix))
		sig, err := strconv.Unquote(raw)
		if err != nil {
			sig = strings.Trim(raw, `"`)
		}
		return sig, true
	}
	return "", false
}

func render(pkgName string, directives []directive) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by typedfngen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	fmt.Fprintf(&b, "import \"github.com/typedfn/typedfn/pkg/typedfn\"\n\n")
	fmt.Fprintf(&b, "// TypedfnBindings lists the functions in this package annotated with\n")
	fmt.Fprintf(&b, "// //typedfn:signature, sorted by function name, ready to pass to (*typedfn.System).Compose.\n")
	fmt.Fprintf(&b, "var TypedfnBindings = typedfn.Bindings{\n")
	for _, d := range directives {
		fmt.Fprintf(&b, "\t{Signature: %q, Fn: %s},\n", d.Signature, d.FuncName)
	}
	fmt.Fprintf(&b, "}\n")

	return format.Source([]byte(b.String()))
}
