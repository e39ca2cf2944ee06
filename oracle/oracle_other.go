//go:build !linux && !windows

package oracle

func isAddressValid(ptr, length uintptr) bool {
	return probe(ptr, length)
}
