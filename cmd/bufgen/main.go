// Command bufgen writes the generated shape catalog of package
// buffers: binary shapes 1, 2, 4, ... and ternary shapes 3, 6, 12, ...
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"slices"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
)

func main() {
	var (
		out        string
		pkg        string
		maxBinary  int
		maxTernary int
	)
	fs := pflag.NewFlagSet("bufgen", pflag.ContinueOnError)
	fs.StringVar(&out, "out", "shapes_gen.go", "output file")
	fs.StringVar(&pkg, "package", "buffers", "package name of the output file")
	fs.IntVar(&maxBinary, "max-binary", 1024, "largest binary shape")
	fs.IntVar(&maxTernary, "max-ternary", 768, "largest ternary shape")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	src, err := generate(pkg, maxBinary, maxTernary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := atomic.WriteFile(out, bytes.NewReader(src)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", out, err)
		os.Exit(1)
	}
}

// generate renders the shape declarations and the static factory switch.
// Ternary shapes are a binary shape followed by one half its size, so their
// largest component must itself be generated.
func generate(pkg string, maxBinary, maxTernary int) ([]byte, error) {
	if maxBinary < 1 || maxBinary > 1<<15 {
		return nil, fmt.Errorf("max-binary %d outside 1..32768", maxBinary)
	}
	if maxTernary != 0 && (maxTernary < 3 || maxTernary*2/3 > maxBinary) {
		return nil, fmt.Errorf("max-ternary %d needs binary shapes up to %d", maxTernary, maxTernary*2/3)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by bufgen. DO NOT EDIT.\n\npackage %s\n\n", pkg)

	sizes := []int{1}
	b.WriteString("// Binary shapes, each one doubling of the previous.\n\n")
	b.WriteString("type Binary1[T any] = Atomic[T]\n")
	for n := 2; n <= maxBinary; n *= 2 {
		fmt.Fprintf(&b, "\ntype Binary%d[T any] = Composite[T, Binary%d[T], Binary%d[T]]\n", n, n/2, n/2)
		sizes = append(sizes, n)
	}

	names := make(map[int]string)
	for _, n := range sizes {
		names[n] = fmt.Sprintf("Binary%d", n)
	}

	if maxTernary >= 3 {
		b.WriteString("\n// Ternary shapes, a binary shape followed by one half its size.\n")
		for n := 3; n <= maxTernary; n *= 2 {
			big := n * 2 / 3
			fmt.Fprintf(&b, "\ntype Ternary%d[T any] = Composite[T, Binary%d[T], Binary%d[T]]\n", n, big, big/2)
			sizes = append(sizes, n)
			names[n] = fmt.Sprintf("Ternary%d", n)
		}
	}
	slices.Sort(sizes)

	b.WriteString("\nvar staticSizes = []uint16{")
	for i, n := range sizes {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", n)
	}
	b.WriteString("}\n")

	b.WriteString("\nfunc staticSource[T any](size uint16) (shapeSource[T], bool) {\n\tswitch size {\n")
	for _, n := range sizes {
		fmt.Fprintf(&b, "\tcase %d:\n\t\treturn pooledShape[T, %s[T]]{}, true\n", n, names[n])
	}
	b.WriteString("\t}\n\treturn nil, false\n}\n")

	return format.Source(b.Bytes())
}
