// Package super reads and writes the superblock (block 0) and derives the
// block address space layout from it: the inode table starts at block 1
// and covers a tenth of the device, rounded up; everything after it is the
// data region.
package super

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/util"
)

// FsSuper mirrors the on-disk superblock.
type FsSuper struct {
	Magic       uint32
	Blocks      uint64
	InodeBlocks uint64
	Inodes      uint64
}

// MkFsSuper computes the layout for a device of sz blocks.
func MkFsSuper(sz uint64) FsSuper {
	nino := util.RoundUp(sz, 10)
	return FsSuper{
		Magic:       common.Magic,
		Blocks:      sz,
		InodeBlocks: nino,
		Inodes:      nino * common.InodesPerBlock,
	}
}

// Valid reports whether the magic identifies a SimpleFS image.
func (sp FsSuper) Valid() bool {
	return sp.Magic == common.Magic
}

// InodeStart returns the first block of the inode table.
func (sp FsSuper) InodeStart() common.Bnum {
	return 1
}

// DataStart returns the first block of the data region.
func (sp FsSuper) DataStart() common.Bnum {
	return 1 + sp.InodeBlocks
}

// Inum2Blk maps inode number n to its containing table block and the slot
// within that block.
func (sp FsSuper) Inum2Blk(n common.Inum) (common.Bnum, uint64) {
	return sp.InodeStart() + n/common.InodesPerBlock, n % common.InodesPerBlock
}

// Encode packs the superblock into a fresh block; bytes past the header
// are zero.
func (sp FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(sp.Magic)
	enc.PutInt32(uint32(sp.Blocks))
	enc.PutInt32(uint32(sp.InodeBlocks))
	enc.PutInt32(uint32(sp.Inodes))
	return enc.Finish()
}

// Decode unpacks block 0 of an image.
func Decode(blk disk.Block) FsSuper {
	dec := marshal.NewDec(blk)
	sp := FsSuper{}
	sp.Magic = dec.GetInt32()
	sp.Blocks = uint64(dec.GetInt32())
	sp.InodeBlocks = uint64(dec.GetInt32())
	sp.Inodes = uint64(dec.GetInt32())
	return sp
}
