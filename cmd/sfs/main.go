// sfs operates on a SimpleFS disk image.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/fs"
	"github.com/mit-pdos/simplefs/util"
)

func main() {
	app := &cli.App{
		Name:  "sfs",
		Usage: "operate on a SimpleFS disk image",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image",
				Usage:    "path to the disk image",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "blocks",
				Usage: "device size in blocks",
				Value: 100,
			},
		},
		Commands: []*cli.Command{{
			Name:   "format",
			Usage:  "write a fresh filesystem onto the image",
			Action: cmdFormat,
		}, {
			Name:   "mount",
			Usage:  "verify that the image mounts cleanly",
			Action: cmdMount,
		}, {
			Name:   "debug",
			Usage:  "dump the superblock and inode table",
			Action: cmdDebug,
		}, {
			Name:   "create",
			Usage:  "allocate a new inode and print its number",
			Action: cmdCreate,
		}, {
			Name:      "remove",
			Usage:     "remove an inode and free its blocks",
			ArgsUsage: "<inode>",
			Action:    cmdRemove,
		}, {
			Name:      "stat",
			Usage:     "print an inode's size in bytes",
			ArgsUsage: "<inode>",
			Action:    cmdStat,
		}, {
			Name:      "cat",
			Usage:     "write an inode's contents to stdout",
			ArgsUsage: "<inode>",
			Action:    cmdCat,
		}, {
			Name:      "copyin",
			Usage:     "copy a host file into an inode",
			ArgsUsage: "<path> <inode>",
			Action:    cmdCopyin,
		}, {
			Name:      "copyout",
			Usage:     "copy an inode's contents to a host file",
			ArgsUsage: "<inode> <path>",
			Action:    cmdCopyout,
		}},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDevice(c *cli.Context) (disk.Disk, error) {
	return disk.NewFileDisk(c.String("image"), c.Uint64("blocks"))
}

// withMount runs f against a mounted filesystem, unmounting and closing
// the device afterwards.
func withMount(c *cli.Context, f func(*fs.FileSystem) error) error {
	d, err := openDevice(c)
	if err != nil {
		return err
	}
	defer d.Close()
	var fsys fs.FileSystem
	if err := fsys.Mount(d); err != nil {
		return err
	}
	defer fsys.Unmount()
	return f(&fsys)
}

func inumArg(c *cli.Context, i int) (common.Inum, error) {
	arg := c.Args().Get(i)
	if arg == "" {
		return 0, fmt.Errorf("missing inode number")
	}
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad inode number %q", arg)
	}
	return n, nil
}

func cmdFormat(c *cli.Context) error {
	d, err := openDevice(c)
	if err != nil {
		return err
	}
	defer d.Close()
	return fs.Format(d)
}

func cmdMount(c *cli.Context) error {
	return withMount(c, func(fsys *fs.FileSystem) error {
		return nil
	})
}

func cmdDebug(c *cli.Context) error {
	d, err := openDevice(c)
	if err != nil {
		return err
	}
	defer d.Close()
	return fs.Debug(d, os.Stdout)
}

func cmdCreate(c *cli.Context) error {
	return withMount(c, func(fsys *fs.FileSystem) error {
		n, err := fsys.Create()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	})
}

func cmdRemove(c *cli.Context) error {
	n, err := inumArg(c, 0)
	if err != nil {
		return err
	}
	return withMount(c, func(fsys *fs.FileSystem) error {
		return fsys.Remove(n)
	})
}

func cmdStat(c *cli.Context) error {
	n, err := inumArg(c, 0)
	if err != nil {
		return err
	}
	return withMount(c, func(fsys *fs.FileSystem) error {
		size, err := fsys.Stat(n)
		if err != nil {
			return err
		}
		fmt.Println(size)
		return nil
	})
}

func cmdCat(c *cli.Context) error {
	n, err := inumArg(c, 0)
	if err != nil {
		return err
	}
	return withMount(c, func(fsys *fs.FileSystem) error {
		return copyOut(fsys, n, os.Stdout)
	})
}

func cmdCopyin(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return fmt.Errorf("missing source path")
	}
	n, err := inumArg(c, 1)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return withMount(c, func(fsys *fs.FileSystem) error {
		for off := uint64(0); off < uint64(len(data)); {
			chunk := util.Min(uint64(len(data))-off, disk.BlockSize)
			w, err := fsys.Write(n, data[off:off+chunk], off)
			if err != nil {
				return err
			}
			if w < chunk {
				return fmt.Errorf("short write at offset %d: image is full", off+w)
			}
			off += w
		}
		return nil
	})
}

func cmdCopyout(c *cli.Context) error {
	n, err := inumArg(c, 0)
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("missing destination path")
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return withMount(c, func(fsys *fs.FileSystem) error {
		return copyOut(fsys, n, out)
	})
}

// copyOut streams inode n to w in block-sized chunks.
func copyOut(fsys *fs.FileSystem, n common.Inum, w io.Writer) error {
	size, err := fsys.Stat(n)
	if err != nil {
		return err
	}
	buf := make([]byte, disk.BlockSize)
	for off := uint64(0); off < size; {
		r, err := fsys.Read(n, buf, off)
		if err != nil {
			return err
		}
		if r == 0 {
			break
		}
		if _, err := w.Write(buf[:r]); err != nil {
			return err
		}
		off += r
	}
	return nil
}
