//go:build windows

package oracle

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const writable = windows.PAGE_READWRITE | windows.PAGE_WRITECOPY |
	windows.PAGE_EXECUTE_READWRITE | windows.PAGE_EXECUTE_WRITECOPY

// isAddressValid walks the range region by region with VirtualQuery. Every
// region must be committed, writable and free of guard or no-access flags.
func isAddressValid(ptr, length uintptr) bool {
	end, ok := span(ptr, length)
	if !ok {
		return false
	}
	if length == 0 {
		return true
	}

	for addr := ptr; addr < end; {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQuery(addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			return false
		}
		if mbi.State != windows.MEM_COMMIT {
			return false
		}
		if mbi.Protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 || mbi.Protect&writable == 0 {
			return false
		}
		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			return false
		}
		addr = next
	}
	return true
}
