package fixed

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/fixedmem"
	fmerrors "github.com/wippyai/fixedmem/errors"
)

type countingUnloader struct {
	unloads int
	valid   bool
}

func (c *countingUnloader) Unload() {
	c.unloads++
	c.valid = false
}

func (c *countingUnloader) IsValid() bool { return c.valid }

func TestDisposable_CloseExactlyOnce(t *testing.T) {
	a := NewArena()
	defer a.Close()

	u := &countingUnloader{valid: true}
	releases := 0
	d, err := Wrap(a, u, func() { releases++ }, nil)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	if a.Len() != 1 {
		t.Fatalf("arena Len = %d, want 1", a.Len())
	}

	d.Close()
	d.Close()

	if u.unloads != 1 || releases != 1 {
		t.Fatalf("unloads=%d releases=%d, want 1 and 1", u.unloads, releases)
	}
	if !d.Closed() {
		t.Fatal("Closed should report true")
	}
	if a.Len() != 0 {
		t.Fatalf("arena Len = %d after Close, want 0", a.Len())
	}
}

func TestDisposable_SkipsUnloadWhenAlreadyInvalid(t *testing.T) {
	a := NewArena()
	u := &countingUnloader{valid: false}
	d, _ := Wrap(a, u, nil, nil)
	d.Close()
	if u.unloads != 0 {
		t.Fatalf("Unload called %d times on an invalid value", u.unloads)
	}
}

func TestPin(t *testing.T) {
	a := NewArena()
	defer a.Close()

	samples := []int16{1, -1, 2, -2}
	d, err := Pin(a, samples)
	if err != nil {
		t.Fatalf("Pin failed: %v", err)
	}

	vals, err := d.Value().Values()
	if err != nil {
		t.Fatal(err)
	}
	vals[0] = 100
	if samples[0] != 100 {
		t.Fatal("write through pinned context not visible")
	}

	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Value().Values(); !errors.Is(err, fmerrors.ErrInvalidOperation) {
		t.Fatalf("Values after Close = %v", err)
	}
}

func TestPinReadOnly(t *testing.T) {
	a := NewArena()
	defer a.Close()

	d, err := PinReadOnly(a, []uint8{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	ctx, residue, err := TransformDisposableReadOnly[uint8, [2]uint8](d)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Value().Len() != 2 || residue.Value().Len() != 1 {
		t.Fatalf("count=%d residual=%d", ctx.Value().Len(), residue.Value().Len())
	}

	residue.Close()
	if !d.Closed() {
		t.Fatal("closing the residue must close its parent")
	}
	if ctx.Value().IsValid() {
		t.Fatal("sibling view must die with the parent")
	}
}

func TestTransformDisposable_ParentChain(t *testing.T) {
	a := NewArena()
	defer a.Close()

	d, err := Pin(a, []uint32{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	ctx, residue, err := TransformDisposable[uint32, [8]byte](d)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ParentHandle() != d.Handle() || residue.ParentHandle() != d.Handle() {
		t.Fatal("transformation results must name the source as parent")
	}
	if a.Len() != 3 {
		t.Fatalf("arena Len = %d, want 3", a.Len())
	}

	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	if !d.Closed() {
		t.Fatal("closing a child must close the parent")
	}
	if d.Value().IsValid() || residue.Value().IsValid() {
		t.Fatal("every view of the family must be dead")
	}
	// The sibling is not closed by the cascade but its value is dead.
	if residue.Closed() {
		t.Fatal("cascade only walks up, siblings stay open")
	}
	residue.Close()
	if a.Len() != 0 {
		t.Fatalf("arena Len = %d, want 0", a.Len())
	}

	if _, _, err := TransformDisposable[uint32, byte](d); !errors.Is(err, fmerrors.ErrInvalidOperation) {
		t.Fatalf("transform of closed disposable = %v", err)
	}
}

func TestWrap_ParentRules(t *testing.T) {
	a, b := NewArena(), NewArena()
	defer a.Close()
	defer b.Close()

	parent, _ := Wrap(a, &countingUnloader{valid: true}, nil, nil)

	if _, err := Wrap(b, &countingUnloader{valid: true}, nil, parent); !errors.Is(err, fmerrors.ErrInvalidArgument) {
		t.Fatalf("cross-arena parent = %v, want invalid argument", err)
	}

	child, err := Wrap(nil, &countingUnloader{valid: true}, nil, parent)
	if err != nil {
		t.Fatal(err)
	}
	if child.ParentHandle() != parent.Handle() {
		t.Fatal("nil arena should inherit the parent's arena")
	}

	parent.Close()
	if _, err := Wrap(a, &countingUnloader{valid: true}, nil, parent); !errors.Is(err, fmerrors.ErrInvalidOperation) {
		t.Fatalf("closed parent = %v, want invalid operation", err)
	}

	var none *Disposable[*Memory]
	if _, err := Wrap(a, &countingUnloader{valid: true}, nil, none); err != nil {
		t.Fatalf("typed nil parent should be treated as no parent: %v", err)
	}
}

func TestArena_CloseSweepsEverything(t *testing.T) {
	a := NewArena()
	u1 := &countingUnloader{valid: true}
	u2 := &countingUnloader{valid: true}
	d1, _ := Wrap(a, u1, nil, nil)
	d2, _ := Wrap(a, u2, nil, d1)

	a.Close()
	if u1.unloads != 1 || u2.unloads != 1 {
		t.Fatalf("unloads = %d, %d", u1.unloads, u2.unloads)
	}
	if !d1.Closed() || !d2.Closed() {
		t.Fatal("arena Close must close every disposable")
	}

	// Explicit Close afterwards is a no-op.
	d2.Close()
	if u2.unloads != 1 {
		t.Fatal("double unload after sweep")
	}

	if _, err := Wrap(a, &countingUnloader{valid: true}, nil, nil); err == nil {
		t.Fatal("Wrap into a closed arena should fail")
	}
}

func TestArena_Check(t *testing.T) {
	a := NewArena()
	defer a.Close()

	words := []uint32{1, 2}
	d, err := Pin(a, words)
	if err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if _, err := Wrap(a, &countingUnloader{valid: true}, nil, nil); err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}

	if err := a.Check(fixedmem.OracleFunc(func(ptr, length uintptr) bool { return true })); err != nil {
		t.Fatalf("Check with accepting oracle: %v", err)
	}

	var calls int
	reject := fixedmem.OracleFunc(func(ptr, length uintptr) bool {
		calls++
		return false
	})
	err = a.Check(reject)
	if !errors.Is(err, fmerrors.ErrInvalidOperation) {
		t.Fatalf("Check with rejecting oracle = %v, want ErrInvalidOperation", err)
	}
	if calls != 1 {
		t.Errorf("oracle calls = %d, want 1 (the opaque unloader has no descriptor)", calls)
	}

	d.Close()
	if err := a.Check(reject); err != nil {
		t.Errorf("Check after Close = %v, want nil", err)
	}
}

func TestTransformDisposable_ChildKeepsParentAlive(t *testing.T) {
	a := NewArena()
	defer a.Close()

	// Only the children escape; the pinned parent is dropped here.
	ctx, residue := func() (*Disposable[*Context[[8]byte]], *Disposable[*Memory]) {
		d, err := Pin(a, []uint32{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		ctx, residue, err := TransformDisposable[uint32, [8]byte](d)
		if err != nil {
			t.Fatal(err)
		}
		return ctx, residue
	}()

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}

	if ctx.Closed() || !ctx.Value().IsValid() || !residue.Value().IsValid() {
		t.Fatalf("children torn down by the parent's cleanup: closed=%t valid=%t residue valid=%t",
			ctx.Closed(), ctx.Value().IsValid(), residue.Value().IsValid())
	}
	if a.Len() != 3 {
		t.Fatalf("arena Len = %d, want 3", a.Len())
	}
	values, err := ctx.Value().Values()
	if err != nil {
		t.Fatalf("Values after GC: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("len(values) = %d, want 1", len(values))
	}

	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	if residue.Value().IsValid() {
		t.Fatal("closing a child must tear down the family")
	}
	residue.Close()
	if a.Len() != 0 {
		t.Fatalf("arena Len = %d, want 0", a.Len())
	}
}

func TestDisposable_CleanupUnloadsLeaked(t *testing.T) {
	a := NewArena()
	defer a.Close()

	var released atomic.Bool
	func() {
		_, err := Wrap(a, &countingUnloader{valid: true}, func() { released.Store(true) }, nil)
		if err != nil {
			t.Fatal(err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !released.Load() || a.Len() != 0 {
		if time.Now().After(deadline) {
			t.Skip("cleanup did not run in time; the runtime gives no guarantee")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}
