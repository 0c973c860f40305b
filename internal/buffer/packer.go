/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package buffer lays out NUL-terminated strings and pointer arrays into a
// caller-supplied fixed byte region, mirroring the layout an NSS entry point
// must build inside the C buffer it was handed by glibc.
//
// It never allocates beyond the region it is given, and any write that would
// run past the end of the region fails with ErrOutOfSpace, leaving the
// region's content beyond the current offset untouched.
package buffer

import (
	"unsafe"

	"github.com/nabbar/sectora/internal/kind"
)

// PtrSize is the natural alignment of a pointer on the target platform.
// Pointer arrays are aligned up to this boundary before being written, per
// the spec's explicit alignment requirement.
const PtrSize = unsafe.Sizeof(uintptr(0))

// ErrOutOfSpace is returned whenever a write would exceed the region length.
var ErrOutOfSpace = kind.New(kind.OutOfSpace, "buffer too small")

// Packer owns a byte region and the offset of the next free byte within it.
// It is not safe for concurrent use: each NSS call session owns exactly one
// Packer built over the buffer the host process supplied for that call.
type Packer struct {
	base []byte
	off  int
}

// New wraps region in a Packer. region is not copied; writes mutate it
// directly, exactly as packing into a caller-owned C buffer requires.
func New(region []byte) *Packer {
	return &Packer{base: region}
}

// Len returns the capacity of the underlying region.
func (p *Packer) Len() int {
	return len(p.base)
}

// Offset returns the number of bytes written so far.
func (p *Packer) Offset() int {
	return p.off
}

// Bytes returns the full backing region (including any unwritten tail).
func (p *Packer) Bytes() []byte {
	return p.base
}

// WriteString appends s followed by a NUL terminator and returns the offset
// (relative to the start of the region) of its first byte. On failure the
// Packer's offset is left exactly where it was before the call.
func (p *Packer) WriteString(s string) (int, error) {
	need := len(s) + 1
	if p.off+need > len(p.base) {
		return 0, ErrOutOfSpace
	}
	start := p.off
	copy(p.base[p.off:], s)
	p.base[p.off+len(s)] = 0
	p.off += need
	return start, nil
}

// alignUp rounds off up to the next multiple of PtrSize.
func alignUp(off int) int {
	rem := off % int(PtrSize)
	if rem == 0 {
		return off
	}
	return off + int(PtrSize) - rem
}

// WritePointerArray writes each string in items as a NUL-terminated entry
// followed by a NULL-terminated array of offsets (relative to the region
// start) to each entry, itself aligned to PtrSize. It returns the offset of
// the array's first element.
//
// Unlike a real NSS implementation, which writes machine pointers, this
// packer writes offsets into the region: the caller (the cgo shim in
// nss/sectora.go) is responsible for translating an offset into an absolute
// *C.char by adding the region's base address, since only that caller knows
// the address the region was allocated at.
func (p *Packer) WritePointerArray(items []string) (int, error) {
	entries := make([]int, len(items))
	for i, s := range items {
		off, err := p.WriteString(s)
		if err != nil {
			return 0, err
		}
		entries[i] = off
	}

	aligned := alignUp(p.off)
	pad := aligned - p.off
	arrBytes := (len(entries) + 1) * int(PtrSize)
	if aligned+arrBytes > len(p.base) {
		return 0, ErrOutOfSpace
	}

	for i := 0; i < pad; i++ {
		p.base[p.off+i] = 0
	}
	p.off = aligned

	arrStart := p.off
	for _, e := range entries {
		putUintptr(p.base[p.off:], uintptr(e))
		p.off += int(PtrSize)
	}
	// NULL terminator entry.
	putUintptr(p.base[p.off:], 0)
	p.off += int(PtrSize)

	return arrStart, nil
}

func putUintptr(dst []byte, v uintptr) {
	for i := 0; i < int(PtrSize); i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func getUintptr(src []byte) uintptr {
	var v uintptr
	for i := 0; i < int(PtrSize); i++ {
		v |= uintptr(src[i]) << (8 * i)
	}
	return v
}

// FixupPointerArray rewrites the count non-terminator slots of the
// NULL-terminated array WritePointerArray wrote at the relative offset
// arrOff, replacing each raw relative offset with translate(offset). The
// NULL terminator slot is left untouched.
//
// WritePointerArray itself only ever sees a relative byte region, so the
// array it produces holds offsets, not addresses a C caller can dereference.
// A caller that additionally knows the region's absolute base address (the
// cgo shim in nss/sectora.go) calls FixupPointerArray after packing to turn
// those offsets into real pointers before exposing the array to libc.
func (p *Packer) FixupPointerArray(arrOff, count int, translate func(relOffset int) uintptr) {
	for i := 0; i < count; i++ {
		slot := arrOff + i*int(PtrSize)
		rel := getUintptr(p.base[slot:])
		putUintptr(p.base[slot:], translate(int(rel)))
	}
}
