// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package mem

import (
	"reflect"
	"unsafe"
)

func NewArena() *Arena {
	return &Arena{
		typedSlabs: make(map[reflect.Type][]slab),
	}
}

func NewSlice[T ~[]E, E any](a *Arena, len, cap int) T {
	if cap == 0 {
		return nil
	}
	// We cannot use TypeOf(*new(T)) when T is an interface type, because that
	// passes a nil interface to TypeOf, which returns nil.
	var e *E
	ptr := a.alloc(reflect.TypeOf(e).Elem(), cap)
	return T(unsafe.Slice((*E)(ptr), cap)[:len])
}

func Append[T ~[]E, E any](a *Arena, s T, data ...E) T {
	s = growSlice(a, s, len(data))
	s = append(s, data...)
	return s
}

func Grow[T ~[]E, E any](a *Arena, s T, n int) T {
	if n -= cap(s) - len(s); n > 0 {
		s = growSlice(a, s, n)
	}
	return s
}

func growSlice[T ~[]E, E any](a *Arena, s T, n int) T {
	const growThreshold = 256
	newLen := len(s) + n
	newCap := cap(s)

	if newCap > 0 {
		for newLen > newCap {
			if newCap < growThreshold {
				newCap *= 2
			} else {
				newCap += newCap / 4
			}
		}
	} else {
		newCap = n
	}
	if newCap == cap(s) {
		return s
	}
	s2 := NewSlice[T, E](a, len(s), newCap)
	copy(s2, s)
	return s2
}

type Arena struct {
	byteSlabs  []slab
	typedSlabs map[reflect.Type][]slab
}

const slabSize = 1024 * 1024

func (a *Arena) alloc(typ reflect.Type, num int) unsafe.Pointer {
	type iface struct {
		_    unsafe.Pointer
		rtyp *struct {
			size      int
			ptrPrefix int
			_         uint32
			_         uint8
			align     uint8
		}
	}

	// FIXME(dh): guard against types that are larger than a whole slab

	rtyp := (*iface)(unsafe.Pointer(&typ)).rtyp
	// rtyp.size already includes padding
	totalSize := num * rtyp.size
	if rtyp.ptrPrefix == 0 {
		// OPT(dh): skip full slabs
		for i := range a.byteSlabs {
			sl := &a.byteSlabs[i]
			off := align(sl.offset, rtyp.align)
			if sl.size-off >= totalSize {
				// Found slab
				sl.offset = off + totalSize
				ptr := unsafe.Add(sl.data, off)
				// Return zeroed memory
				clear(unsafe.Slice((*byte)(ptr), totalSize))
				return ptr
			}
		}
		// Need a new slab
		a.byteSlabs = append(a.byteSlabs, slab{
			data: unsafe.Pointer(unsafe.SliceData(make([]byte, slabSize))),
			size: slabSize,
		})
		sl := &a.byteSlabs[len(a.byteSlabs)-1]
		sl.offset = totalSize
		return sl.data
	} else {
		slabs := a.typedSlabs[typ]
		// OPT(dh): skip full slabs
		for i := range slabs {
			sl := &slabs[i]
			off := align(sl.offset, rtyp.align)
			if sl.size-off >= totalSize {
				// Found slab
				sl.offset = off + totalSize
				// No need to zero memory here, we do it for typed slabs when
				// resetting the arena.
				return unsafe.Add(sl.data, off)
			}
		}
		// Need a new slab
		sz := slabSize / rtyp.size
		ptr := reflect.MakeSlice(reflect.SliceOf(typ), sz, sz).UnsafePointer()
		sl := slab{
			data:   ptr,
			size:   sz,
			offset: totalSize,
		}
		a.typedSlabs[typ] = append(a.typedSlabs[typ], sl)
		return ptr
	}
}

// to has to be a power of two.
func align(v int, to uint8) int {
	return v + (-v & (int(to) - 1))
}

func (a *Arena) Reset() {
	if a.typedSlabs == nil {
		a.typedSlabs = make(map[reflect.Type][]slab)
	}
	for i := range a.byteSlabs {
		a.byteSlabs[i].offset = 0
	}
	for _, slabs := range a.typedSlabs {
		for i := range slabs {
			slab := &slabs[i]
			// Clear memory so it doesn't keep Go pointers alive
			clear(unsafe.Slice((*byte)(slab.data), slab.offset))
			slab.offset = 0
		}
	}
}

type slab struct {
	data   unsafe.Pointer
	size   int
	offset int
}
