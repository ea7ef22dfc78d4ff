package xdvdfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// volumeUnusedSize is the size of the reserved padding block between the
// creation filetime and the closing magic string.
const volumeUnusedSize = 1992

// VolumeDescriptor is the fixed-size record that opens (and, mirrored,
// closes) every XDVDFS volume.
type VolumeDescriptor struct {
	RootTableSector uint32
	RootTableSize   uint32
	CreationTime    uint64 // raw Windows FILETIME
}

// marshal serializes a VolumeDescriptor into a full 2048-byte sector.
func (v *VolumeDescriptor) marshal() []byte {
	buf := make([]byte, SectorSize)
	copy(buf[0:20], magicHeader[:])
	binary.LittleEndian.PutUint32(buf[20:24], v.RootTableSector)
	binary.LittleEndian.PutUint32(buf[24:28], v.RootTableSize)
	binary.LittleEndian.PutUint64(buf[28:36], v.CreationTime)
	// buf[36 : 36+volumeUnusedSize] stays zero.
	copy(buf[36+volumeUnusedSize:], magicFooter[:])
	return buf
}

// unmarshalVolumeDescriptor parses and validates a 2048-byte sector as a
// volume descriptor.
func unmarshalVolumeDescriptor(sector []byte) (*VolumeDescriptor, error) {
	if len(sector) != SectorSize {
		return nil, fmt.Errorf("volume descriptor: %w", &xerr.Corrupt{Detail: fmt.Sprintf("short sector: %d bytes", len(sector))})
	}
	if !bytes.Equal(sector[0:20], magicHeader[:]) || !bytes.Equal(sector[36+volumeUnusedSize:], magicFooter[:]) {
		return nil, xerr.ErrNoValidVolume
	}
	return &VolumeDescriptor{
		RootTableSector: binary.LittleEndian.Uint32(sector[20:24]),
		RootTableSize:   binary.LittleEndian.Uint32(sector[24:28]),
		CreationTime:    binary.LittleEndian.Uint64(sector[28:36]),
	}, nil
}
