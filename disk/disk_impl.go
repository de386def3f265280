package disk

import (
	"fmt"

	gdisk "github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/simplefs/util"
)

var _ Disk = (*fileDisk)(nil)

// fileDisk stores blocks in a regular file, one pread/pwrite per block.
type fileDisk struct {
	fd        int
	path      string
	numBlocks uint64
	closed    bool
	reads     uint64
	writes    uint64
}

// NewFileDisk opens the image at path, creating it if needed, and sizes it
// to numBlocks blocks.
func NewFileDisk(path string, numBlocks uint64) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}
	if (stat.Mode&unix.S_IFREG) != 0 && uint64(stat.Size) != numBlocks*BlockSize {
		if err := unix.Ftruncate(fd, int64(numBlocks*BlockSize)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("disk: truncate %s: %w", path, err)
		}
	}
	return &fileDisk{fd: fd, path: path, numBlocks: numBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if err := sanity(d.closed, d.numBlocks, a, buf); err != nil {
		return err
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("disk: read block %d: %w", a, err)
	}
	if uint64(n) != BlockSize {
		return fmt.Errorf("disk: short read at block %d: %d bytes", a, n)
	}
	d.reads++
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	if err := d.ReadTo(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if err := sanity(d.closed, d.numBlocks, a, v); err != nil {
		return err
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("disk: write block %d: %w", a, err)
	}
	if uint64(n) != BlockSize {
		return fmt.Errorf("disk: short write at block %d: %d bytes", a, n)
	}
	d.writes++
	return nil
}

func (d *fileDisk) Size() uint64 {
	return d.numBlocks
}

func (d *fileDisk) Reads() uint64 { return d.reads }

func (d *fileDisk) Writes() uint64 { return d.writes }

func (d *fileDisk) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	util.DPrintf(1, "disk %s: %d reads, %d writes\n", d.path, d.reads, d.writes)
	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("disk: close %s: %w", d.path, err)
	}
	return nil
}

var _ Disk = (*memDisk)(nil)

// memDisk keeps blocks in memory, backed by the goose machine disk.
type memDisk struct {
	d         gdisk.Disk
	numBlocks uint64
	closed    bool
	reads     uint64
	writes    uint64
}

func NewMemDisk(numBlocks uint64) *memDisk {
	return &memDisk{d: gdisk.NewMemDisk(numBlocks), numBlocks: numBlocks}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if err := sanity(d.closed, d.numBlocks, a, buf); err != nil {
		return err
	}
	copy(buf, d.d.Read(a))
	d.reads++
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	if err := d.ReadTo(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *memDisk) Write(a uint64, v Block) error {
	if err := sanity(d.closed, d.numBlocks, a, v); err != nil {
		return err
	}
	blk := make(Block, BlockSize)
	copy(blk, v)
	d.d.Write(a, blk)
	d.writes++
	return nil
}

func (d *memDisk) Size() uint64 {
	return d.numBlocks
}

func (d *memDisk) Reads() uint64 { return d.reads }

func (d *memDisk) Writes() uint64 { return d.writes }

func (d *memDisk) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	util.DPrintf(1, "memdisk: %d reads, %d writes\n", d.reads, d.writes)
	return nil
}
