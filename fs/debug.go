package fs

import (
	"fmt"
	"io"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/super"
)

// Debug dumps the superblock and every valid inode to w. It reads the
// device directly and does not require a mount, so it also works on
// images with a bad magic (reported as invalid).
func Debug(d disk.Disk, w io.Writer) error {
	blk, err := d.Read(0)
	if err != nil {
		return err
	}
	sp := super.Decode(blk)
	fmt.Fprintf(w, "SuperBlock:\n")
	if sp.Valid() {
		fmt.Fprintf(w, "    magic number is valid\n")
	} else {
		fmt.Fprintf(w, "    magic number is invalid\n")
		return nil
	}
	fmt.Fprintf(w, "    %d blocks\n", sp.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", sp.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sp.Inodes)

	for bn := sp.InodeStart(); bn < sp.DataStart(); bn++ {
		iblk, err := d.Read(bn)
		if err != nil {
			return err
		}
		for slot := uint64(0); slot < common.InodesPerBlock; slot++ {
			ino := inode.Decode(iblk, slot)
			if !ino.Valid {
				continue
			}
			n := (bn-sp.InodeStart())*common.InodesPerBlock + slot
			direct := 0
			for _, p := range ino.Direct {
				if p != common.NullBnum {
					direct++
				}
			}
			fmt.Fprintf(w, "Inode %d:\n", n)
			fmt.Fprintf(w, "    size: %d bytes\n", ino.Size)
			fmt.Fprintf(w, "    direct blocks: %d\n", direct)
		}
	}
	return nil
}
