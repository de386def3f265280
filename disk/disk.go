// Package disk provides the block device under SimpleFS: a flat array of
// 4096-byte blocks addressed by block number.
//
// Devices reject out-of-range block numbers, buffers that are not exactly
// one block, and operations on a closed handle. They also count successful
// reads and writes for the life of the handle; Close reports the totals.
package disk

import (
	"errors"

	gdisk "github.com/tchajed/goose/machine/disk"
)

// Block is one disk block.
type Block = gdisk.Block

// BlockSize is the number of bytes in a block.
const BlockSize uint64 = gdisk.BlockSize

var (
	ErrClosed    = errors.New("disk: device is closed")
	ErrBadBlock  = errors.New("disk: block number out of range")
	ErrBadBuffer = errors.New("disk: buffer is not block-sized")
)

// Disk is a device of Size() fixed-size blocks.
type Disk interface {
	// ReadTo reads block a into buf, which must be BlockSize bytes.
	ReadTo(a uint64, buf Block) error

	// Read reads block a into a fresh buffer.
	Read(a uint64) (Block, error)

	// Write persists the BlockSize bytes of v as block a.
	Write(a uint64, v Block) error

	// Size reports how big the device is, in blocks.
	Size() uint64

	// Reads and Writes report cumulative successful operations.
	Reads() uint64
	Writes() uint64

	// Close releases the device and reports its I/O totals.
	Close() error
}

// sanity checks an I/O request before touching the device.
func sanity(closed bool, blocks uint64, a uint64, buf Block) error {
	if closed {
		return ErrClosed
	}
	if a >= blocks {
		return ErrBadBlock
	}
	if uint64(len(buf)) != BlockSize {
		return ErrBadBuffer
	}
	return nil
}
