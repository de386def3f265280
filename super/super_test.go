package super

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/simplefs/disk"
)

func TestMkFsSuper(t *testing.T) {
	assert := assert.New(t)
	sp := MkFsSuper(100)
	assert.True(sp.Valid())
	assert.Equal(uint64(100), sp.Blocks)
	assert.Equal(uint64(10), sp.InodeBlocks)
	assert.Equal(uint64(1280), sp.Inodes)
	assert.Equal(uint64(1), sp.InodeStart())
	assert.Equal(uint64(11), sp.DataStart())
}

func TestMkFsSuperRoundsUp(t *testing.T) {
	assert := assert.New(t)
	sp := MkFsSuper(15)
	assert.Equal(uint64(2), sp.InodeBlocks, "a tenth of the device, rounded up")
	assert.Equal(uint64(256), sp.Inodes)
	assert.Equal(uint64(3), sp.DataStart())
}

func TestInum2Blk(t *testing.T) {
	assert := assert.New(t)
	sp := MkFsSuper(100)

	blk, slot := sp.Inum2Blk(0)
	assert.Equal(uint64(1), blk)
	assert.Equal(uint64(0), slot)

	blk, slot = sp.Inum2Blk(127)
	assert.Equal(uint64(1), blk)
	assert.Equal(uint64(127), slot)

	blk, slot = sp.Inum2Blk(128)
	assert.Equal(uint64(2), blk)
	assert.Equal(uint64(0), slot)

	blk, slot = sp.Inum2Blk(1279)
	assert.Equal(uint64(10), blk)
	assert.Equal(uint64(127), slot)
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	sp := MkFsSuper(100)
	blk := sp.Encode()
	assert.Equal(disk.BlockSize, uint64(len(blk)))
	assert.Equal([]byte{0x10, 0x34, 0xf0, 0xf0}, []byte(blk[:4]), "magic is little-endian")
	assert.Equal(sp, Decode(blk))
}

func TestDecodeUnformatted(t *testing.T) {
	sp := Decode(make(disk.Block, disk.BlockSize))
	assert.False(t, sp.Valid())
}
