package buffers

import "go.uber.org/zap"

// DefaultShapeLimit is the default shape budget in bytes.
const DefaultShapeLimit = 4096

// Options configures a Manager.
type Options struct {
	// Logger receives allocation decisions. Nil means the package logger.
	Logger *zap.Logger
	// Registry holds the shape catalogs. Nil means DefaultRegistry.
	Registry *Registry
	// Preload lists capacities registered in each element type's catalog
	// the first time the manager serves that type.
	Preload []uint16
	// ShapeLimit is the largest shape, in bytes, used without PreferShape.
	// Larger requests use a heap array.
	ShapeLimit int
	// Window bounds shape reuse: a cached capacity c serves count when
	// count <= c < Window*count. Values below 2 mean DefaultWindow.
	Window int
	// Dynamic enables the reflective resolver for sizes without a
	// generated shape.
	Dynamic bool
	// PoolHeap reuses heap fallback arrays across allocations.
	PoolHeap bool
}

// DefaultOptions returns the default manager configuration.
func DefaultOptions() Options {
	return Options{
		ShapeLimit: DefaultShapeLimit,
		Window:     DefaultWindow,
		PoolHeap:   true,
	}
}

// AllocOption adjusts a single allocation.
type AllocOption func(*allocOptions)

type allocOptions struct {
	preferShape bool
	forceHeap   bool
}

func collectOptions(opts []AllocOption) allocOptions {
	if len(opts) == 0 {
		return allocOptions{}
	}
	ao := new(allocOptions)
	for _, opt := range opts {
		opt(ao)
	}
	return *ao
}

// PreferShape uses a generated shape whenever one resolves, ignoring
// ShapeLimit.
func PreferShape() AllocOption {
	return func(o *allocOptions) { o.preferShape = true }
}

// ForceHeap always uses a heap array.
func ForceHeap() AllocOption {
	return func(o *allocOptions) { o.forceHeap = true }
}
