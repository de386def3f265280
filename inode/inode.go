// Package inode implements the 32-byte on-disk inode record and the inode
// table manager that loads and saves records through their containing
// block.
//
// Record layout: valid flag, size in bytes, five direct block pointers,
// one indirect pointer, each a little-endian uint32. A pointer of 0 means
// unassigned.
package inode

import (
	"errors"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/super"
	"github.com/mit-pdos/simplefs/util"
)

// ErrNotFound reports an inode number that is out of range or whose record
// is not valid.
var ErrNotFound = errors.New("inode: not found")

// Inode is one file's metadata. It is a value object: loaded, mutated,
// saved, never aliased.
type Inode struct {
	Valid    bool
	Size     uint64
	Direct   [common.NumDirect]common.Bnum
	Indirect common.Bnum
}

// Encode packs ino into slot of an inode-table block.
func (ino Inode) Encode(blk disk.Block, slot uint64) {
	if slot >= common.InodesPerBlock {
		panic("inode: Encode slot out of range")
	}
	enc := marshal.NewEnc(common.InodeSize)
	if ino.Valid {
		enc.PutInt32(1)
	} else {
		enc.PutInt32(0)
	}
	enc.PutInt32(uint32(ino.Size))
	for _, bn := range ino.Direct {
		enc.PutInt32(uint32(bn))
	}
	enc.PutInt32(uint32(ino.Indirect))
	copy(blk[slot*common.InodeSize:(slot+1)*common.InodeSize], enc.Finish())
}

// Decode unpacks slot of an inode-table block.
func Decode(blk disk.Block, slot uint64) Inode {
	if slot >= common.InodesPerBlock {
		panic("inode: Decode slot out of range")
	}
	dec := marshal.NewDec(blk[slot*common.InodeSize : (slot+1)*common.InodeSize])
	ino := Inode{}
	ino.Valid = dec.GetInt32() == 1
	ino.Size = uint64(dec.GetInt32())
	for i := range ino.Direct {
		ino.Direct[i] = common.Bnum(dec.GetInt32())
	}
	ino.Indirect = common.Bnum(dec.GetInt32())
	return ino
}

// PtrGet returns the i'th block number of an indirect block.
func PtrGet(blk disk.Block, i uint64) common.Bnum {
	dec := marshal.NewDec(blk[i*4 : i*4+4])
	return common.Bnum(dec.GetInt32())
}

// PtrPut stores bn as the i'th block number of an indirect block.
func PtrPut(blk disk.Block, i uint64, bn common.Bnum) {
	enc := marshal.NewEnc(4)
	enc.PutInt32(uint32(bn))
	copy(blk[i*4:i*4+4], enc.Finish())
}

// Table reads and writes inode records on a device using the layout from
// its superblock. It does not cache; every call goes to the disk.
type Table struct {
	d  disk.Disk
	sp super.FsSuper
}

func MkTable(d disk.Disk, sp super.FsSuper) Table {
	return Table{d: d, sp: sp}
}

// Load returns inode n, or ErrNotFound if n is out of range or the record
// is not valid.
func (t Table) Load(n common.Inum) (Inode, error) {
	if n >= t.sp.Inodes {
		return Inode{}, ErrNotFound
	}
	blkno, slot := t.sp.Inum2Blk(n)
	blk, err := t.d.Read(blkno)
	if err != nil {
		return Inode{}, err
	}
	ino := Decode(blk, slot)
	if !ino.Valid {
		return Inode{}, ErrNotFound
	}
	util.DPrintf(5, "load inode %d: size %d\n", n, ino.Size)
	return ino, nil
}

// Save writes inode n with a read-modify-write of its containing block.
func (t Table) Save(n common.Inum, ino Inode) error {
	if n >= t.sp.Inodes {
		return ErrNotFound
	}
	blkno, slot := t.sp.Inum2Blk(n)
	blk, err := t.d.Read(blkno)
	if err != nil {
		return err
	}
	ino.Encode(blk, slot)
	util.DPrintf(5, "save inode %d: size %d\n", n, ino.Size)
	return t.d.Write(blkno, blk)
}
