package buffers

import (
	"reflect"
	"strings"
)

// ResolverKind selects how a Resolver produces buffer factories.
type ResolverKind uint8

const (
	// ResolverStatic uses the generated shapes only.
	ResolverStatic ResolverKind = iota
	// ResolverDynamic builds an array type of the requested size through
	// reflection and allocates a fresh array per call.
	ResolverDynamic
	// ResolverChain tries each resolver in Chain in order.
	ResolverChain
)

func (k ResolverKind) String() string {
	switch k {
	case ResolverStatic:
		return "static"
	case ResolverDynamic:
		return "dynamic"
	case ResolverChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Resolver maps a shape size to a factory that can instantiate it.
type Resolver struct {
	Chain []Resolver
	Kind  ResolverKind
}

// StaticResolver resolves sizes with a generated shape.
func StaticResolver() Resolver {
	return Resolver{Kind: ResolverStatic}
}

// DynamicResolver resolves every positive size through reflection.
func DynamicResolver() Resolver {
	return Resolver{Kind: ResolverDynamic}
}

// ChainResolver tries rs in order and uses the first that resolves.
func ChainResolver(rs ...Resolver) Resolver {
	return Resolver{Kind: ResolverChain, Chain: rs}
}

func (r Resolver) String() string {
	if r.Kind != ResolverChain {
		return r.Kind.String()
	}
	parts := make([]string, len(r.Chain))
	for i, c := range r.Chain {
		parts[i] = c.String()
	}
	return "chain(" + strings.Join(parts, ",") + ")"
}

// Factory provides one buffer shape of T and runs callbacks over all of its
// slots.
type Factory[T any] struct {
	src    shapeSource[T]
	size   uint16
	pooled bool
}

// Size returns the number of slots the factory provides.
func (f Factory[T]) Size() uint16 { return f.size }

// Pooled reports whether the slots belong to a generated shape value reused
// across calls rather than an array built for each call.
func (f Factory[T]) Pooled() bool { return f.pooled }

// Run acquires a zeroed shape value and calls fn with its slots. fn must not
// keep the slice after it returns.
func (f Factory[T]) Run(fn func([]T)) {
	full, h := f.src.acquire()
	defer f.src.release(h)
	fn(full)
}

// Resolve returns a factory for size slots of T.
func Resolve[T any](r Resolver, size uint16) (Factory[T], bool) {
	if size == 0 {
		return Factory[T]{}, false
	}
	switch r.Kind {
	case ResolverStatic:
		src, ok := staticSource[T](size)
		if !ok {
			return Factory[T]{}, false
		}
		return Factory[T]{src: src, size: size, pooled: true}, true
	case ResolverDynamic:
		src := dynamicShape[T]{typ: reflect.ArrayOf(int(size), reflect.TypeFor[T]()), size: int(size)}
		return Factory[T]{src: src, size: size}, true
	case ResolverChain:
		for _, c := range r.Chain {
			if f, ok := Resolve[T](c, size); ok {
				return f, true
			}
		}
	}
	return Factory[T]{}, false
}

// dynamicShape builds a fresh [size]T array through reflection on every
// acquire.
type dynamicShape[T any] struct {
	typ  reflect.Type
	size int
}

func (d dynamicShape[T]) acquire() ([]T, any) {
	arr := reflect.New(d.typ).Elem()
	return arr.Slice(0, d.size).Interface().([]T), nil
}

func (dynamicShape[T]) release(any) {}
