// Package blockdev provides the sector-granular block-device abstraction
// consumed by both the XDVDFS reader and packer. It mirrors the three
// capability groups the core format needs: read, write, and a size hint.
//
// Implementations need only satisfy the subset of these interfaces their
// use-site requires: a reader over a disc image implements
// BlockDeviceRead, while the packer's output sink implements all three
// (ReadWriteSizer).
package blockdev

// BlockDeviceRead reads len(out) bytes starting at offsetBytes.
// Implementations must return xerr.ErrEndOfDevice when the read runs
// past the end of the device, and wrap any other failure in *xerr.IO.
type BlockDeviceRead interface {
	ReadAt(offsetBytes int64, out []byte) error
}

// BlockDeviceWrite writes data starting at offsetBytes.
type BlockDeviceWrite interface {
	WriteAt(offsetBytes int64, data []byte) error
}

// BlockDeviceSize reports the current length of the device in bytes.
// The packer uses it to pad the finished image to its planned length.
// The volume reader's image-layout probe does not consult it: a layout
// whose descriptor sector cannot be read is simply skipped.
type BlockDeviceSize interface {
	LenBytes() (int64, error)
}

// Device is the read-only capability set: what the volume reader needs.
type Device interface {
	BlockDeviceRead
}

// ReadWriteSizer is the full capability set: what the packer's sink and
// a read-write image both implement.
type ReadWriteSizer interface {
	BlockDeviceRead
	BlockDeviceWrite
	BlockDeviceSize
}
