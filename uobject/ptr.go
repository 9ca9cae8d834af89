package uobject

import (
	"errors"
	"fmt"

	"uescope/pod"
	"uescope/process"
)

var (
	ErrNullPointer     = errors.New("null pointer")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrChainTooLong    = errors.New("chain too long")
	ErrCorruptArray    = errors.New("corrupt array header")
)

// MaxChainLength bounds every walk along outer, super or next links
const MaxChainLength = 0x1000

// Ptr is a typed address in the target. The zero value is null.
type Ptr[T any] struct {
	addr process.ProcessMemoryAddress
}

// PtrTo wraps addr, rejecting null
func PtrTo[T any](addr process.ProcessMemoryAddress) (Ptr[T], bool) {
	if addr == 0 {
		return Ptr[T]{}, false
	}
	return Ptr[T]{addr: addr}, true
}

// Reinterpret views the same address as a U
func Reinterpret[U, T any](p Ptr[T]) Ptr[U] {
	return Ptr[U]{addr: p.addr}
}

func (p Ptr[T]) Address() process.ProcessMemoryAddress { return p.addr }
func (p Ptr[T]) IsNull() bool                          { return p.addr == 0 }

func (p Ptr[T]) String() string {
	return p.addr.ToString()
}

// Load copies the T that p points at out of the target
func Load[T any](mem process.MemoryReader, p Ptr[T]) (T, error) {
	if p.IsNull() {
		return *new(T), ErrNullPointer
	}
	return pod.ReadT[T](mem, p.addr)
}

// Array is the target's dynamic array header: data pointer, count, capacity
type Array[T any] struct {
	Data     Ptr[T]
	ArrayNum int32
	ArrayMax int32
}

// ReadArray reads and checks the array header at addr
func ReadArray[T any](mem process.MemoryReader, addr process.ProcessMemoryAddress) (Array[T], error) {
	a, err := pod.ReadT[Array[T]](mem, addr)
	if err != nil {
		return Array[T]{}, err
	}
	if err := a.check(); err != nil {
		return Array[T]{}, fmt.Errorf("array at %s: %w", addr.ToString(), err)
	}
	return a, nil
}

func (a Array[T]) check() error {
	if a.ArrayNum < 0 || a.ArrayNum > a.ArrayMax {
		return fmt.Errorf("%w: num %d max %d", ErrCorruptArray, a.ArrayNum, a.ArrayMax)
	}
	if a.ArrayNum > 0 && a.Data.IsNull() {
		return fmt.Errorf("%w: %d elements at null", ErrCorruptArray, a.ArrayNum)
	}
	return nil
}

func (a Array[T]) Len() int {
	return int(a.ArrayNum)
}

// At returns the address of element i
func (a Array[T]) At(i int) (Ptr[T], error) {
	if i < 0 || i >= int(a.ArrayNum) {
		return Ptr[T]{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, a.ArrayNum)
	}
	return Ptr[T]{addr: a.Data.addr + process.ProcessMemoryAddress(i)*process.ProcessMemoryAddress(pod.SizeOf[T]())}, nil
}

// Get reads element i
func (a Array[T]) Get(mem process.MemoryReader, i int) (T, error) {
	p, err := a.At(i)
	if err != nil {
		return *new(T), err
	}
	return Load(mem, p)
}

// ReadAll reads every element in one go
func (a Array[T]) ReadAll(mem process.MemoryReader) ([]T, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if a.ArrayNum == 0 {
		return nil, nil
	}
	return pod.ReadSliceT[T](mem, a.Data.addr, int(a.ArrayNum))
}
