package uobject

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"uescope/pod"
	"uescope/process"
	"uescope/process_blob"
)

// View is implemented by Object and every view that embeds it
type View interface {
	// StaticTag is the hierarchy level the view reads its record as
	StaticTag() TypeTag
	object() Object
}

type viewPtr[T any] interface {
	*T
	View
	bind(Object)
}

// Object is a view of one object record. It holds a snapshot of the record
// taken when the view was created; later changes in the target are not seen.
type Object struct {
	rt  *Runtime
	rec *process_blob.ProcessBlob
}

func (Object) StaticTag() TypeTag { return TagObject }

func (o Object) object() Object { return o }

func (o *Object) bind(src Object) { *o = src }

// load snapshots the record at addr as a T without checking its class
func load[T any, P viewPtr[T]](rt *Runtime, addr process.ProcessMemoryAddress) (T, error) {
	var out T
	tag := P(&out).StaticTag()
	if addr == 0 {
		return out, fmt.Errorf("%s: %w", tag, ErrNullPointer)
	}

	rec, err := process_blob.ReadProcessBlob(rt.mem, addr, rt.layout.Size(tag))
	if err != nil {
		return out, fmt.Errorf("read %s at %s: %w", tag, addr.ToString(), err)
	}

	P(&out).bind(Object{rt: rt, rec: rec})
	return out, nil
}

// IsA reports whether v's class is T's class or derives from it
func IsA[T View](v View) bool {
	var t T
	return v.object().IsA(t.StaticTag())
}

// Cast returns v viewed as a T when v's class derives from T's class. The
// record is snapshotted again at T's size when the current one is smaller.
func Cast[T any, P viewPtr[T]](v View) (T, bool) {
	var out T
	o := v.object()
	tag := P(&out).StaticTag()
	if !o.IsA(tag) {
		return out, false
	}

	if process.ProcessMemorySize(len(o.rec.Data())) >= o.rt.layout.Size(tag) {
		P(&out).bind(o)
		return out, true
	}

	out, err := load[T, P](o.rt, o.Address())
	if err != nil {
		o.rt.log.Debugln("Cast to", tag.String(), "failed:", err)
		return out, false
	}
	return out, true
}

func (o Object) Valid() bool {
	return o.rt != nil && o.rec != nil
}

func (o Object) Runtime() *Runtime {
	return o.rt
}

func (o Object) Address() process.ProcessMemoryAddress {
	if o.rec == nil {
		return 0
	}
	return o.rec.Address()
}

// Record returns the snapshot backing the view
func (o Object) Record() *process_blob.ProcessBlob {
	return o.rec
}

// The accessors below read inside the snapshot. Layout.Validate guarantees
// every field fits the record of the view that reads it.

func (o Object) u8(off Offset) uint8 {
	if o.rec == nil {
		return 0
	}
	v, _ := o.rec.OffsetUINT8(off)
	return v
}

func (o Object) u16(off Offset) uint16 {
	if o.rec == nil {
		return 0
	}
	v, _ := o.rec.OffsetUINT16(off)
	return v
}

func (o Object) u32(off Offset) uint32 {
	if o.rec == nil {
		return 0
	}
	v, _ := o.rec.OffsetUINT32(off)
	return v
}

func (o Object) i32(off Offset) int32 {
	if o.rec == nil {
		return 0
	}
	v, _ := o.rec.OffsetINT32(off)
	return v
}

func (o Object) u64(off Offset) uint64 {
	if o.rec == nil {
		return 0
	}
	v, _ := o.rec.OffsetUINT64(off)
	return v
}

func (o Object) ptr(off Offset) process.ProcessMemoryAddress {
	return process.ProcessMemoryAddress(o.u64(off))
}

func (o Object) nameRef(off Offset) NameRef {
	if o.rec == nil {
		return NameRef{}
	}
	ref, _ := pod.ReadT[NameRef](o.rec, o.Address()+off)
	return ref
}

func (o Object) Flags() ObjectFlags {
	return ObjectFlags(o.u64(o.rt.layout.ObjectFlags))
}

// InternalIndex is the object's slot in the object table
func (o Object) InternalIndex() int32 {
	return o.i32(o.rt.layout.ObjectInternalIndex)
}

func (o Object) NameRef() NameRef {
	return o.nameRef(o.rt.layout.ObjectName)
}

func (o Object) Name() (string, error) {
	return o.rt.Name(o.NameRef())
}

func (o Object) Class() (Class, error) {
	return load[Class](o.rt, o.ptr(o.rt.layout.ObjectClass))
}

// Outer returns the containing object, ErrNullPointer at the root
func (o Object) Outer() (Object, error) {
	return load[Object](o.rt, o.ptr(o.rt.layout.ObjectOuter))
}

// PathName joins the names along the outer chain, root first, with "::"
func (o Object) PathName() (string, error) {
	var names []string
	cur := o
	for range MaxChainLength {
		name, err := cur.Name()
		if err != nil {
			return "", err
		}
		names = append(names, name)

		outer, err := cur.Outer()
		if errors.Is(err, ErrNullPointer) {
			slices.Reverse(names)
			return strings.Join(names, "::"), nil
		}
		if err != nil {
			return "", err
		}
		cur = outer
	}
	return "", fmt.Errorf("outer chain of %s: %w", o.Address().ToString(), ErrChainTooLong)
}

// FullName is the class name and the path name, e.g. "Class Core::Object"
func (o Object) FullName() (string, error) {
	class, err := o.Class()
	if err != nil {
		return "", err
	}
	className, err := class.Name()
	if err != nil {
		return "", err
	}
	path, err := o.PathName()
	if err != nil {
		return "", err
	}
	return className + " " + path, nil
}

// IsA reports whether the object's class is the class of tag or derives from it
func (o Object) IsA(tag TypeTag) bool {
	if !o.Valid() {
		return false
	}

	target := o.rt.staticClass(tag)
	if target == 0 {
		return false
	}

	cls := o.ptr(o.rt.layout.ObjectClass)
	for range MaxChainLength {
		if cls == 0 {
			return false
		}
		if cls == target {
			return true
		}
		next, err := pod.ReadT[uint64](o.rt.mem, cls+o.rt.layout.StructSuper)
		if err != nil {
			o.rt.log.Debugln("IsA: unreadable super of", cls.ToString(), err)
			return false
		}
		cls = process.ProcessMemoryAddress(next)
	}

	o.rt.log.Warn("IsA: class chain of ", o.Address().ToString(), " does not terminate")
	return false
}

func (o Object) String() string {
	if !o.Valid() {
		return "<invalid>"
	}
	name, err := o.FullName()
	if err != nil {
		return o.Address().ToString()
	}
	return name
}
