// Package pod copies plain-old-data values in and out of target memory
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"uescope/process"
)

var ErrNotPOD = errors.New("T contains pointers; not POD-safe")

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

func ReadT[T any](mem process.MemoryReader, addr process.ProcessMemoryAddress) (T, error) {
	size := SizeOf[T]()
	if size == 0 {
		return *new(T), errors.New("ReadT: size of T is zero")
	}

	data, err := mem.ReadMemory(addr, size)
	if err != nil {
		return *new(T), err
	}

	return ReadBlob[T](data)
}

// WriteT serializes a POD struct T into a raw byte slice using the in-memory layout.
// T must be POD (no pointers or Go-managed references) for the bytes to be meaningful
// outside the process. This function uses unsafe to copy the raw bytes directly.
func WriteT[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// PutT writes v into dst at offset
func PutT[T any](dst []byte, offset int, v T) error {
	b := WriteT(v)
	if offset < 0 || offset+len(b) > len(dst) {
		return fmt.Errorf("PutT: %d bytes at %d exceed buffer of %d", len(b), offset, len(dst))
	}
	copy(dst[offset:], b)
	return nil
}

func ReadSliceT[T any](mem process.MemoryReader, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}

	if hasPointers[T]() {
		return nil, ErrNotPOD
	}

	// Read the entire range at once for efficiency
	data, err := mem.ReadMemory(addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, err
	}

	result := make([]T, count)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&result[0])), len(data))
	copy(dst, data)

	return result, nil
}

// ReadBlob copies the first sizeof(T) bytes from data into a new T.
// T must be "POD": it and all of its fields/element types contain no pointers.
func ReadBlob[T any](data []byte) (T, error) {
	var tmp T

	if hasPointers[T]() {
		return tmp, ErrNotPOD
	}

	size := int(unsafe.Sizeof(tmp))
	if len(data) < size {
		return tmp, errors.New("ReadBlob: buffer too small")
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), size)
	copy(dst, data[:size])

	return tmp, nil
}

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	return typeHasPointers(reflect.TypeFor[T]())
}

func typeHasPointers(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
