// Package oracle answers whether an address range is currently mapped and
// read/write accessible.
//
// Oracles are diagnostics. A fixed.Memory stays correct through its own
// validity state; an oracle only catches a live descriptor whose memory was
// unmapped behind its back.
package oracle

import (
	"os"
	"runtime/debug"
	"sync/atomic"
	"unsafe"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fixedmem"
)

// Nop reports every range valid.
var Nop fixedmem.Oracle = fixedmem.OracleFunc(func(uintptr, uintptr) bool { return true })

// Default returns the backend for the current platform.
func Default() fixedmem.Oracle {
	return fixedmem.OracleFunc(isAddressValid)
}

// Probe returns an oracle that touches one word per page of the range with
// an atomic no-op add, which needs both read and write access. Faults are
// recovered and reported as invalid.
func Probe() fixedmem.Oracle {
	return fixedmem.OracleFunc(probe)
}

// span returns the end of the range, or false when the range is nil or
// wraps around the address space.
func span(ptr, length uintptr) (uintptr, bool) {
	if ptr == 0 {
		return 0, false
	}
	end := ptr + length
	if end < ptr {
		return 0, false
	}
	return end, true
}

func probe(ptr, length uintptr) (ok bool) {
	end, valid := span(ptr, length)
	if !valid {
		return false
	}
	if length == 0 {
		return true
	}

	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	page := uintptr(os.Getpagesize())
	for p := ptr; p < end; p = (p &^ (page - 1)) + page {
		touch(p)
	}
	touch(end - 1)
	return true
}

// touch performs a read-modify-write of the aligned word holding addr
// without changing its value.
func touch(addr uintptr) {
	atomic.AddUint32((*uint32)(unsafe.Pointer(addr&^3)), 0)
}

// Guest returns an oracle over a wazero linear memory. A range is valid when
// it lies inside the memory's current backing buffer, so addresses taken
// before the memory grew and moved report false.
func Guest(mem api.Memory) fixedmem.Oracle {
	return fixedmem.OracleFunc(func(ptr, length uintptr) bool {
		end, ok := span(ptr, length)
		if !ok || mem == nil {
			return false
		}
		buf, ok := mem.Read(0, mem.Size())
		if !ok || len(buf) == 0 {
			return false
		}
		base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
		return ptr >= base && end <= base+uintptr(len(buf))
	})
}
