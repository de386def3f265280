package fs

import (
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/util"
)

// Read copies bytes of inode n starting at offset into buf and returns
// how many were read. Reads past the end of the file are truncated; a
// read starting at or past the end returns 0. The indirect block is read
// at most once per call.
func (fs *FileSystem) Read(n common.Inum, buf []byte, offset uint64) (uint64, error) {
	if !fs.mounted() {
		return 0, ErrNotMounted
	}
	ino, err := fs.tbl.Load(n)
	if err != nil {
		return 0, err
	}
	if offset >= ino.Size {
		return 0, nil
	}
	length := util.Min(uint64(len(buf)), ino.Size-offset)

	var iblk disk.Block
	read := uint64(0)
	cursor := offset
	for toCopy := length; toCopy > 0; {
		lblk := cursor / disk.BlockSize
		inner := cursor % disk.BlockSize
		chunk := util.Min(toCopy, disk.BlockSize-inner)

		var p common.Bnum
		if lblk < common.NumDirect {
			p = ino.Direct[lblk]
		} else if ino.Indirect != common.NullBnum {
			if iblk == nil {
				iblk, err = fs.d.Read(ino.Indirect)
				if err != nil {
					return read, err
				}
			}
			p = inode.PtrGet(iblk, lblk-common.NumDirect)
		}
		if p == common.NullBnum {
			// a hole reads as zero
			for i := uint64(0); i < chunk; i++ {
				buf[read+i] = 0
			}
		} else {
			blk, err := fs.d.Read(p)
			if err != nil {
				return read, err
			}
			copy(buf[read:read+chunk], blk[inner:inner+chunk])
		}
		cursor += chunk
		read += chunk
		toCopy -= chunk
	}
	return read, nil
}

// writeState carries one Write call's in-flight metadata: the inode copy,
// the indirect block (read or created at most once), and the blocks this
// call has allocated, for rollback if nothing gets written.
type writeState struct {
	ino       inode.Inode
	iblk      disk.Block
	iblkDirty bool
	fresh     []common.Bnum
}

// bmap resolves logical block lblk of the file to a physical block,
// allocating the data block (and the indirect block on first need) if the
// slot is unassigned. Returns 0 when the device is out of space.
func (fs *FileSystem) bmap(st *writeState, lblk uint64) (common.Bnum, bool, error) {
	if lblk < common.NumDirect {
		if p := st.ino.Direct[lblk]; p != common.NullBnum {
			return p, false, nil
		}
		p := fs.balloc.AllocNum()
		if p == common.NullBnum {
			return 0, false, nil
		}
		st.ino.Direct[lblk] = p
		st.fresh = append(st.fresh, p)
		return p, true, nil
	}

	if st.ino.Indirect == common.NullBnum {
		ibn := fs.balloc.AllocNum()
		if ibn == common.NullBnum {
			return 0, false, nil
		}
		st.ino.Indirect = ibn
		st.iblk = make(disk.Block, disk.BlockSize)
		st.iblkDirty = true
		st.fresh = append(st.fresh, ibn)
	} else if st.iblk == nil {
		blk, err := fs.d.Read(st.ino.Indirect)
		if err != nil {
			return 0, false, err
		}
		st.iblk = blk
	}

	idx := lblk - common.NumDirect
	if p := inode.PtrGet(st.iblk, idx); p != common.NullBnum {
		return p, false, nil
	}
	p := fs.balloc.AllocNum()
	if p == common.NullBnum {
		return 0, false, nil
	}
	inode.PtrPut(st.iblk, idx, p)
	st.iblkDirty = true
	st.fresh = append(st.fresh, p)
	return p, true, nil
}

// Write copies buf into inode n starting at offset, allocating blocks as
// needed, and returns how many bytes were written. Writing past the end
// of the file extends it; a gap between the old end and offset reads as
// zero. A write that runs past the maximum file size or out of disk space
// returns a short count rather than an error.
func (fs *FileSystem) Write(n common.Inum, buf []byte, offset uint64) (uint64, error) {
	if !fs.mounted() {
		return 0, ErrNotMounted
	}
	ino, err := fs.tbl.Load(n)
	if err != nil {
		return 0, err
	}
	length := uint64(len(buf))
	if length == 0 {
		return 0, nil
	}
	if offset >= common.MaxFileSize {
		return 0, nil
	}
	if util.SumOverflows(offset, length) || offset+length > common.MaxFileSize {
		length = common.MaxFileSize - offset
	}

	st := &writeState{ino: ino}
	outOfSpace := false

	// Back the gap between the current end of file and offset with
	// zeroed blocks so every byte below the new size has a block.
	if offset > st.ino.Size {
		for lblk := st.ino.Size / disk.BlockSize; lblk*disk.BlockSize < offset; lblk++ {
			p, fresh, err := fs.bmap(st, lblk)
			if err != nil {
				return 0, err
			}
			if p == common.NullBnum {
				outOfSpace = true
				break
			}
			if fresh {
				if err := fs.d.Write(p, make(disk.Block, disk.BlockSize)); err != nil {
					return 0, err
				}
			}
		}
	}

	written := uint64(0)
	if !outOfSpace {
		cursor := offset
		for toCopy := length; toCopy > 0; {
			lblk := cursor / disk.BlockSize
			inner := cursor % disk.BlockSize
			chunk := util.Min(toCopy, disk.BlockSize-inner)

			p, fresh, err := fs.bmap(st, lblk)
			if err != nil {
				return written, err
			}
			if p == common.NullBnum {
				outOfSpace = true
				break
			}
			if inner == 0 && chunk == disk.BlockSize {
				err = fs.d.Write(p, buf[written:written+chunk])
			} else {
				// partial block: read-modify-write, except that a
				// freshly allocated block starts from zeroes
				var blk disk.Block
				if fresh {
					blk = make(disk.Block, disk.BlockSize)
				} else {
					blk, err = fs.d.Read(p)
				}
				if err == nil {
					copy(blk[inner:inner+chunk], buf[written:written+chunk])
					err = fs.d.Write(p, blk)
				}
			}
			if err != nil {
				return written, err
			}
			cursor += chunk
			written += chunk
			toCopy -= chunk
		}
	}

	if written == 0 {
		// nothing fit: put back any blocks claimed for the gap so the
		// failed write has no effect
		for _, bn := range st.fresh {
			fs.balloc.FreeNum(bn)
		}
		util.DPrintf(2, "write inode %d: out of space at offset %d\n", n, offset)
		return 0, nil
	}

	if st.iblkDirty {
		if err := fs.d.Write(st.ino.Indirect, st.iblk); err != nil {
			return written, err
		}
	}
	if end := offset + written; end > st.ino.Size {
		st.ino.Size = end
	}
	if err := fs.tbl.Save(n, st.ino); err != nil {
		return written, err
	}
	util.DPrintf(2, "write inode %d: %d bytes at offset %d\n", n, written, offset)
	return written, nil
}
