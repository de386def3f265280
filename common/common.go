// Package common holds the on-disk constants and shared types of SimpleFS.
//
// These values are part of the disk format; changing any of them makes
// existing images unreadable.
package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	// Magic identifies a formatted SimpleFS image in block 0.
	Magic uint32 = 0xf0f03410

	// InodeSize is the on-disk size of one inode record, in bytes.
	InodeSize uint64 = 32

	// InodesPerBlock inode records tile one block of the inode table.
	InodesPerBlock uint64 = disk.BlockSize / InodeSize

	// NumDirect is the number of direct block pointers in an inode.
	NumDirect uint64 = 5

	// PointersPerBlock is the number of block numbers in an indirect block.
	PointersPerBlock uint64 = disk.BlockSize / 4

	// MaxFileSize is the largest file an inode can describe, in bytes.
	MaxFileSize uint64 = disk.BlockSize * (NumDirect + PointersPerBlock)
)

// Inum is an inode number, an index into the inode table.
type Inum = uint64

// Bnum is an absolute block number on the device.
type Bnum = uint64

// NullBnum marks an unassigned pointer. Block 0 holds the superblock, so
// it can never be the target of a data pointer.
const NullBnum Bnum = 0

// Inode records must tile a block exactly.
var _ [0]struct{} = [disk.BlockSize % InodeSize]struct{}{}
var _ [0]struct{} = [disk.BlockSize - InodeSize*InodesPerBlock]struct{}{}
