// Package fs implements SimpleFS: a flat namespace of numbered inodes
// over a block device. Files span up to five direct blocks plus one
// indirect block of pointers. The free-block bitmap lives only in memory;
// it is rebuilt from the inode table at mount, so the inode table is the
// single source of truth for allocation.
package fs

import (
	"errors"

	"github.com/mit-pdos/simplefs/alloc"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/super"
	"github.com/mit-pdos/simplefs/util"
)

var (
	ErrMounted     = errors.New("fs: already mounted")
	ErrNotMounted  = errors.New("fs: not mounted")
	ErrBadMagic    = errors.New("fs: bad superblock magic")
	ErrOutOfInodes = errors.New("fs: inode table is full")
)

// FileSystem is a handle to a mounted filesystem. The zero value is
// unmounted. A handle owns its bitmap and superblock copy; the device is
// borrowed for the duration of the mount.
type FileSystem struct {
	d      disk.Disk
	sp     super.FsSuper
	tbl    inode.Table
	balloc *alloc.Alloc
}

func (fs *FileSystem) mounted() bool {
	return fs.d != nil
}

// Format writes a fresh filesystem onto d: the superblock followed by a
// zeroed inode table. Data blocks are left untouched; stale bytes in them
// are unreachable because no inode is valid. The caller must not format a
// device that is currently mounted.
func Format(d disk.Disk) error {
	sp := super.MkFsSuper(d.Size())
	util.DPrintf(1, "format: %d blocks, %d inode blocks\n", sp.Blocks, sp.InodeBlocks)
	if err := d.Write(0, sp.Encode()); err != nil {
		return err
	}
	zero := make(disk.Block, disk.BlockSize)
	for bn := sp.InodeStart(); bn < sp.DataStart(); bn++ {
		if err := d.Write(bn, zero); err != nil {
			return err
		}
	}
	return nil
}

// Mount attaches fs to d: verifies the superblock magic, caches the
// superblock, and rebuilds the free-block bitmap from the inode table.
func (fs *FileSystem) Mount(d disk.Disk) error {
	if fs.mounted() {
		return ErrMounted
	}
	blk, err := d.Read(0)
	if err != nil {
		return err
	}
	sp := super.Decode(blk)
	if !sp.Valid() {
		return ErrBadMagic
	}
	balloc, err := buildBitmap(d, sp)
	if err != nil {
		return err
	}
	fs.d = d
	fs.sp = sp
	fs.tbl = inode.MkTable(d, sp)
	fs.balloc = balloc
	util.DPrintf(1, "mount: %d blocks, %d free\n", sp.Blocks, balloc.NumFree())
	return nil
}

// Unmount drops the device reference and discards the bitmap.
func (fs *FileSystem) Unmount() error {
	if !fs.mounted() {
		return ErrNotMounted
	}
	fs.d = nil
	fs.sp = super.FsSuper{}
	fs.tbl = inode.Table{}
	fs.balloc = nil
	return nil
}

// buildBitmap reconstructs allocation state from the inode table: the
// superblock and inode-table blocks are reserved, and every block a valid
// inode points at is marked used. Any other block is free, stale bytes or
// not.
func buildBitmap(d disk.Disk, sp super.FsSuper) (*alloc.Alloc, error) {
	a := alloc.MkAlloc(sp.DataStart(), sp.Blocks)
	for bn := sp.InodeStart(); bn < sp.DataStart(); bn++ {
		blk, err := d.Read(bn)
		if err != nil {
			return nil, err
		}
		for slot := uint64(0); slot < common.InodesPerBlock; slot++ {
			ino := inode.Decode(blk, slot)
			if !ino.Valid {
				continue
			}
			for _, p := range ino.Direct {
				if p != common.NullBnum {
					a.MarkUsed(p)
				}
			}
			if ino.Size > disk.BlockSize*common.NumDirect && ino.Indirect != common.NullBnum {
				a.MarkUsed(ino.Indirect)
				iblk, err := d.Read(ino.Indirect)
				if err != nil {
					return nil, err
				}
				for i := uint64(0); i < common.PointersPerBlock; i++ {
					if p := inode.PtrGet(iblk, i); p != common.NullBnum {
						a.MarkUsed(p)
					}
				}
			}
		}
	}
	return a, nil
}
