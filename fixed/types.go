package fixed

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/fixedmem/errors"
)

var unmanagedCache sync.Map // reflect.Type -> error (nil for unmanaged types)

// CheckUnmanaged reports whether t can be laid over raw memory: no Go
// pointers anywhere in its layout, and a non-zero size.
func CheckUnmanaged(t reflect.Type) error {
	if t == nil {
		return errors.InvalidArgument(errors.PhasePin, "nil element type", nil)
	}
	if cached, ok := unmanagedCache.Load(t); ok {
		if cached == nil {
			return nil
		}
		return cached.(error)
	}

	var err error
	if reason := managedReason(t); reason != "" {
		err = errors.Unmanaged(errors.PhasePin, t.String(), reason)
	} else if t.Size() == 0 {
		err = errors.InvalidArgument(errors.PhasePin, fmt.Sprintf("element type %s has zero size", t), nil)
	}

	if err == nil {
		unmanagedCache.Store(t, nil)
	} else {
		unmanagedCache.Store(t, err)
	}
	return err
}

func managedReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return ""
	case reflect.Array:
		if reason := managedReason(t.Elem()); reason != "" {
			return "array element: " + reason
		}
		return ""
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if reason := managedReason(f.Type); reason != "" {
				return "field " + f.Name + ": " + reason
			}
		}
		return ""
	default:
		return t.Kind().String() + " holds Go pointers"
	}
}

// elementOf returns the reflected type of T after checking it is unmanaged.
func elementOf[T any]() (reflect.Type, error) {
	t := reflect.TypeFor[T]()
	if err := CheckUnmanaged(t); err != nil {
		return nil, err
	}
	return t, nil
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func alignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// ResidueOf splits byteLength into whole elements of elemSize bytes and the
// trailing residual bytes. elemSize must be positive.
func ResidueOf(byteLength, elemSize int) (count, residual int) {
	count = byteLength / elemSize
	residual = byteLength - count*elemSize
	return count, residual
}
