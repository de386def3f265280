// Package alloc tracks free blocks with an in-memory bitmap, one bit per
// device block. A set bit means allocated, a clear bit means free.
//
// The bitmap is never persisted: the filesystem rebuilds it from the inode
// table at mount and discards it at unmount.
package alloc

import (
	"github.com/mit-pdos/simplefs/util"
)

// Alloc covers blocks [0, max); only [start, max) — the data region — can
// be handed out.
type Alloc struct {
	bitmap []byte
	start  uint64
	max    uint64
}

// MkAlloc makes a bitmap for a device of max blocks with the blocks below
// start (superblock and inode table) permanently reserved.
func MkAlloc(start uint64, max uint64) *Alloc {
	a := &Alloc{
		bitmap: make([]byte, util.RoundUp(max, 8)),
		start:  start,
		max:    max,
	}
	for bn := uint64(0); bn < start; bn++ {
		a.MarkUsed(bn)
	}
	return a
}

// MarkUsed sets bn allocated.
func (a *Alloc) MarkUsed(bn uint64) {
	if bn >= a.max {
		panic("alloc: MarkUsed out of range")
	}
	a.bitmap[bn/8] |= 1 << (bn % 8)
}

// Used reports whether bn is allocated.
func (a *Alloc) Used(bn uint64) bool {
	if bn >= a.max {
		panic("alloc: Used out of range")
	}
	return a.bitmap[bn/8]&(1<<(bn%8)) != 0
}

// AllocNum marks the lowest free block in the data region used and returns
// its number, or 0 if the region is full. The scan order makes allocation
// deterministic.
func (a *Alloc) AllocNum() uint64 {
	for bn := a.start; bn < a.max; bn++ {
		if !a.Used(bn) {
			a.MarkUsed(bn)
			util.DPrintf(10, "alloc block %d\n", bn)
			return bn
		}
	}
	return 0
}

// FreeNum clears bn. Freeing an already-free block is a no-op.
func (a *Alloc) FreeNum(bn uint64) {
	if bn >= a.max {
		panic("alloc: FreeNum out of range")
	}
	util.DPrintf(10, "free block %d\n", bn)
	a.bitmap[bn/8] &^= 1 << (bn % 8)
}

// NumFree counts the free blocks on the whole device.
func (a *Alloc) NumFree() uint64 {
	used := uint64(0)
	for _, b := range a.bitmap {
		used += popCnt(b)
	}
	return a.max - used
}

func popCnt(b byte) uint64 {
	n := uint64(0)
	for ; b != 0; b >>= 1 {
		n += uint64(b & 1)
	}
	return n
}
