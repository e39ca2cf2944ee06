package oracle

import (
	"context"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
)

// one page of memory, exported as "memory"
var memoryWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page min, no max
	0x07, 0x0a, 0x01, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00, // export "memory"
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func TestNop(t *testing.T) {
	assert.True(t, Nop.IsAddressValid(0, 0))
	assert.True(t, Nop.IsAddressValid(1, 1<<40))
}

func TestBackends_LiveMemory(t *testing.T) {
	buf := make([]byte, 3*65536+17)
	oracles := map[string]func() bool{
		"default": func() bool { return Default().IsAddressValid(addr(buf), uintptr(len(buf))) },
		"probe":   func() bool { return Probe().IsAddressValid(addr(buf), uintptr(len(buf))) },
		"default-tail": func() bool {
			return Default().IsAddressValid(addr(buf)+uintptr(len(buf))-1, 1)
		},
	}
	for name, check := range oracles {
		t.Run(name, func(t *testing.T) {
			assert.True(t, check())
		})
	}
	buf[0] = 7
	assert.True(t, Probe().IsAddressValid(addr(buf), 1))
	assert.Equal(t, byte(7), buf[0], "probing must not change memory")
}

func TestBackends_Degenerate(t *testing.T) {
	buf := make([]byte, 8)
	for name, o := range map[string]interface{ IsAddressValid(uintptr, uintptr) bool }{
		"default": Default(),
		"probe":   Probe(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, o.IsAddressValid(0, 0), "nil with zero length")
			assert.False(t, o.IsAddressValid(0, 8), "nil with length")
			assert.True(t, o.IsAddressValid(addr(buf), 0), "zero length at a real address")
			assert.False(t, o.IsAddressValid(^uintptr(0)-3, 8), "wrapping range")
		})
	}
}

func TestGuest(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, memoryWasm)
	require.NoError(t, err)
	mem := mod.Memory()
	require.NotNil(t, mem)

	buf, ok := mem.Read(0, mem.Size())
	require.True(t, ok)
	base := addr(buf)

	o := Guest(mem)
	assert.True(t, o.IsAddressValid(base, 65536))
	assert.True(t, o.IsAddressValid(base+100, 0))
	assert.False(t, o.IsAddressValid(base, 65537))
	assert.False(t, o.IsAddressValid(base-1, 1))
	assert.False(t, o.IsAddressValid(0, 0))
	assert.False(t, Guest(nil).IsAddressValid(base, 1))

	_, ok = mem.Grow(64)
	require.True(t, ok)
	after, _ := mem.Read(0, mem.Size())
	if addr(after) == base {
		t.Skip("guest memory grew in place")
	}
	assert.False(t, o.IsAddressValid(base, 16), "address from before the move")
	assert.True(t, o.IsAddressValid(addr(after), uintptr(len(after))))
}
