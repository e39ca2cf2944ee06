//go:build linux

package oracle

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// isAddressValid asks mincore whether every page of the range is mapped,
// then checks /proc/self/maps that the mappings are readable and writable.
func isAddressValid(ptr, length uintptr) bool {
	end, ok := span(ptr, length)
	if !ok {
		return false
	}
	if length == 0 {
		return true
	}

	page := uintptr(unix.Getpagesize())
	start := ptr &^ (page - 1)
	vec := make([]byte, (end-start+page-1)/page)
	region := unsafe.Slice((*byte)(unsafe.Pointer(start)), end-start)
	if err := unix.Mincore(region, vec); err != nil {
		// ENOMEM: part of the range is not mapped.
		return false
	}

	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return false
	}
	defer f.Close()
	maps, err := parseMaps(f)
	if err != nil {
		return false
	}
	return covered(maps, start, end)
}

// mapping is one line of /proc/self/maps.
type mapping struct {
	start, end  uintptr
	read, write bool
}

func parseMaps(r io.Reader) ([]mapping, error) {
	var out []mapping
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		dash := bytes.IndexByte(line, '-')
		space := bytes.IndexByte(line, ' ')
		if dash < 0 || space < dash || len(line) < space+3 {
			continue
		}
		lo, err := strconv.ParseUint(string(line[:dash]), 16, 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseUint(string(line[dash+1:space]), 16, 64)
		if err != nil {
			return nil, err
		}
		perms := line[space+1:]
		out = append(out, mapping{
			start: uintptr(lo),
			end:   uintptr(hi),
			read:  perms[0] == 'r',
			write: perms[1] == 'w',
		})
	}
	return out, sc.Err()
}

// covered reports whether [start, end) lies in contiguous readable and
// writable mappings. maps must be sorted by address, as the kernel lists them.
func covered(maps []mapping, start, end uintptr) bool {
	next := start
	for _, m := range maps {
		if m.end <= next {
			continue
		}
		if m.start > next || !m.read || !m.write {
			return false
		}
		next = m.end
		if next >= end {
			return true
		}
	}
	return false
}
