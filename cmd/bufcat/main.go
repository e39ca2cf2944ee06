package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fixedmem/buffers"
	"github.com/wippyai/fixedmem/config"
	"github.com/wippyai/fixedmem/guest"
)

type options struct {
	elem        string
	configPath  string
	counts      []int
	register    []int
	verbose     bool
	interactive bool
}

func main() {
	var o options
	fs := pflag.NewFlagSet("bufcat", pflag.ContinueOnError)
	fs.StringVar(&o.elem, "elem", "u8", "element type: "+strings.Join(elemNames(), ", "))
	fs.IntSliceVar(&o.counts, "count", nil, "element counts to resolve (repeatable)")
	fs.IntSliceVar(&o.register, "register", nil, "shape sizes to register before resolving")
	fs.StringVar(&o.configPath, "config", config.Path(), "JSONC config file (default $"+config.EnvVar+")")
	fs.BoolVar(&o.verbose, "verbose", false, "log allocation decisions")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "interactive mode with TUI")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bufcat [--elem u32] --count 5 [--count 100] [--register 6]")
		fmt.Fprintln(os.Stderr, "       bufcat -i  (interactive mode)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, out io.Writer) error {
	kind, ok := elemKinds[o.elem]
	if !ok {
		return fmt.Errorf("unknown element type %q (want one of %s)", o.elem, strings.Join(elemNames(), ", "))
	}

	logger := zap.NewNop()
	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer l.Sync() //nolint:errcheck
		logger = l
	}

	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	opts := cfg.BufferOptions(logger)
	opts.Registry = buffers.NewRegistry()
	m := buffers.NewManager(opts)

	cat := &catalog{kind: kind, manager: m}
	for _, size := range o.register {
		if err := cat.register(size); err != nil {
			return err
		}
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(cat)
	}

	if len(o.counts) == 0 {
		return fmt.Errorf("no counts given; use --count or -i")
	}

	fmt.Fprintln(out, cat.header())
	for _, count := range o.counts {
		line, err := cat.resolve(count)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Catalog:")
	for _, entry := range cat.entries() {
		fmt.Fprintf(out, "  %s\n", entry)
	}
	st := m.Stats()
	fmt.Fprintf(out, "\nshape=%d dynamic=%d heap=%d synthesized=%d\n", st.Shape, st.Dynamic, st.Heap, st.Synthesized)
	return nil
}

// elemKind binds a catalog element name to its Go type.
type elemKind struct {
	wit   wit.Type
	name  string
	alloc func(m *buffers.Manager, count int) (buffers.Plan, error)
	store func(r *buffers.Registry) *buffers.Store
}

func kindOf[T any](name string, w wit.Type) elemKind {
	return elemKind{
		name: name,
		wit:  w,
		alloc: func(m *buffers.Manager, count int) (buffers.Plan, error) {
			p, err := buffers.PlanFor[T](m, count)
			if err != nil {
				return p, err
			}
			err = buffers.Alloc(m, count, func(b buffers.ScopedBuffer[T]) {
				clear(b.Span())
			})
			return p, err
		},
		store: func(r *buffers.Registry) *buffers.Store {
			return buffers.StoreFor[T](r)
		},
	}
}

var elemKinds = map[string]elemKind{
	"u8":   kindOf[uint8]("u8", wit.U8{}),
	"u16":  kindOf[uint16]("u16", wit.U16{}),
	"u32":  kindOf[uint32]("u32", wit.U32{}),
	"u64":  kindOf[uint64]("u64", wit.U64{}),
	"f32":  kindOf[float32]("f32", wit.F32{}),
	"f64":  kindOf[float64]("f64", wit.F64{}),
	"c128": kindOf[complex128]("c128", nil),
}

func elemNames() []string {
	names := make([]string, 0, len(elemKinds))
	for name := range elemKinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// catalog is the shape catalog of one element type under one manager.
type catalog struct {
	manager *buffers.Manager
	kind    elemKind
}

func (c *catalog) store() *buffers.Store {
	return c.kind.store(c.manager.Registry())
}

func (c *catalog) header() string {
	s := c.store()
	desc := fmt.Sprintf("elem %s (go %s, size %d)", c.kind.name, s.ElementType(), s.ElementType().Size())
	if c.kind.wit != nil {
		if info, err := guest.Layout(c.kind.wit); err == nil {
			desc += fmt.Sprintf(", wit align %d", info.Align)
		}
	}
	return desc + ", resolver " + c.manager.Resolver().String()
}

func (c *catalog) register(size int) error {
	if size < 1 || size > 65535 {
		return fmt.Errorf("register size %d outside 1..65535", size)
	}
	_, err := c.store().Register(uint16(size))
	return err
}

// resolve allocates count elements and describes the decision.
func (c *catalog) resolve(count int) (string, error) {
	p, err := c.kind.alloc(c.manager, count)
	if err != nil {
		return "", err
	}
	line := fmt.Sprintf("%d -> %s (%s)", count, p.Shape.Tree(), p.Storage)
	if p.Reason != "" {
		line += ": " + p.Reason
	}
	return line, nil
}

func (c *catalog) entries() []string {
	s := c.store()
	keys := s.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		md, _ := s.Get(k)
		out = append(out, md.Tree())
	}
	return out
}
