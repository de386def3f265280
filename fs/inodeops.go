package fs

import (
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/util"
)

// Create claims the lowest-numbered free inode slot, writes it back as a
// valid zero-length inode, and returns its number.
func (fs *FileSystem) Create() (common.Inum, error) {
	if !fs.mounted() {
		return 0, ErrNotMounted
	}
	for bn := fs.sp.InodeStart(); bn < fs.sp.DataStart(); bn++ {
		blk, err := fs.d.Read(bn)
		if err != nil {
			return 0, err
		}
		for slot := uint64(0); slot < common.InodesPerBlock; slot++ {
			if inode.Decode(blk, slot).Valid {
				continue
			}
			ino := inode.Inode{Valid: true}
			ino.Encode(blk, slot)
			if err := fs.d.Write(bn, blk); err != nil {
				return 0, err
			}
			n := (bn-fs.sp.InodeStart())*common.InodesPerBlock + slot
			util.DPrintf(2, "create inode %d\n", n)
			return n, nil
		}
	}
	return 0, ErrOutOfInodes
}

// Remove frees every block inode n points at, then zeroes the record.
func (fs *FileSystem) Remove(n common.Inum) error {
	if !fs.mounted() {
		return ErrNotMounted
	}
	ino, err := fs.tbl.Load(n)
	if err != nil {
		return err
	}
	for _, p := range ino.Direct {
		if p != common.NullBnum {
			fs.balloc.FreeNum(p)
		}
	}
	if ino.Size > disk.BlockSize*common.NumDirect && ino.Indirect != common.NullBnum {
		iblk, err := fs.d.Read(ino.Indirect)
		if err != nil {
			return err
		}
		for i := uint64(0); i < common.PointersPerBlock; i++ {
			if p := inode.PtrGet(iblk, i); p != common.NullBnum {
				fs.balloc.FreeNum(p)
			}
		}
		fs.balloc.FreeNum(ino.Indirect)
	}
	util.DPrintf(2, "remove inode %d\n", n)
	return fs.tbl.Save(n, inode.Inode{})
}

// Stat returns the size of inode n in bytes.
func (fs *FileSystem) Stat(n common.Inum) (uint64, error) {
	if !fs.mounted() {
		return 0, ErrNotMounted
	}
	ino, err := fs.tbl.Load(n)
	if err != nil {
		return 0, err
	}
	return ino.Size, nil
}
