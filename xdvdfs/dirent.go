package xdvdfs

import (
	"encoding/binary"
	"fmt"

	"github.com/charlesthegreat77/xdvdfs-go/cp1252"
	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// dirent is the decoded form of a single directory entry record. Left
// and Right are byte offsets from the start of the page the entry lives
// in, or -1 when the corresponding subtree is absent. RightEndOfPage
// distinguishes "no right subtree, keep linear-scanning this page" (raw
// right == 0x0000) from "no right subtree, this page has no more
// entries" (raw right == 0xFFFF) -- both decode Right to -1, so callers
// walking a page linearly must check this flag, not just Right.
type dirent struct {
	Left           int32
	Right          int32
	RightEndOfPage bool
	DataSector     uint32
	DataSize       uint32
	Attributes     uint8
	NameBytes      []byte // raw CP1252 bytes, undecoded
}

func (d *dirent) isDirectory() bool {
	return d.Attributes&AttrDirectory != 0
}

func (d *dirent) leftIsNone() bool {
	return d.Left < 0
}

func (d *dirent) rightIsNone() bool {
	return d.Right < 0
}

// encodedSize returns the total on-disk size of this entry, including
// 4-byte alignment padding.
func (d *dirent) encodedSize() int {
	return align4(direntFixedSize + len(d.NameBytes))
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// marshalDirent writes a directory entry at buf[0:], returning the
// number of bytes written (already 4-byte aligned).
func marshalDirent(buf []byte, d *dirent) int {
	var left, right uint16
	if d.Left < 0 {
		left = direntOffsetNone
	} else {
		left = uint16(d.Left / 4)
	}
	switch {
	case d.RightEndOfPage:
		right = direntOffsetEndOfPage
	case d.Right < 0:
		right = direntOffsetNone
	default:
		right = uint16(d.Right / 4)
	}
	binary.LittleEndian.PutUint16(buf[0:2], left)
	binary.LittleEndian.PutUint16(buf[2:4], right)
	binary.LittleEndian.PutUint32(buf[4:8], d.DataSector)
	binary.LittleEndian.PutUint32(buf[8:12], d.DataSize)
	buf[12] = d.Attributes
	buf[13] = uint8(len(d.NameBytes))
	copy(buf[14:14+len(d.NameBytes)], d.NameBytes)
	size := d.encodedSize()
	for i := 14 + len(d.NameBytes); i < size; i++ {
		buf[i] = 0
	}
	return size
}

// unmarshalDirent decodes a directory entry starting at buf[0:]. It
// returns nil, 0, nil when the slot holds the page-closing sentinel
// (left == right == 0xFFFF), signalling the end of the page's entry
// chain to a linear scan.
func unmarshalDirent(buf []byte) (*dirent, int, error) {
	if len(buf) < direntFixedSize {
		return nil, 0, &xerr.Corrupt{Detail: "truncated directory entry"}
	}
	left := binary.LittleEndian.Uint16(buf[0:2])
	right := binary.LittleEndian.Uint16(buf[2:4])
	if left == direntOffsetEndOfPage && right == direntOffsetEndOfPage {
		return nil, 0, nil
	}
	nameLen := int(buf[13])
	if nameLen == 0 || nameLen > maxNameLength {
		return nil, 0, &xerr.Corrupt{Detail: fmt.Sprintf("invalid directory entry name length %d", nameLen)}
	}
	total := direntFixedSize + nameLen
	if len(buf) < total {
		return nil, 0, &xerr.Corrupt{Detail: "directory entry name runs past page"}
	}
	d := &dirent{
		DataSector: binary.LittleEndian.Uint32(buf[4:8]),
		DataSize:   binary.LittleEndian.Uint32(buf[8:12]),
		Attributes: buf[12],
		NameBytes:  append([]byte(nil), buf[14:14+nameLen]...),
	}
	if left == direntOffsetNone || left == direntOffsetEndOfPage {
		d.Left = -1
	} else {
		d.Left = int32(left) * 4
	}
	switch right {
	case direntOffsetEndOfPage:
		d.Right = -1
		d.RightEndOfPage = true
	case direntOffsetNone:
		d.Right = -1
	default:
		d.Right = int32(right) * 4
	}
	return d, align4(total), nil
}

// decodedName returns the entry's name as a UTF-8 string.
func (d *dirent) decodedName() (string, error) {
	return cp1252.Decode(d.NameBytes)
}
