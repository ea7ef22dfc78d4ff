package blockdev

import "github.com/charlesthegreat77/xdvdfs-go/xerr"

// MemoryDevice is an in-memory block device, grown on demand by writes.
// It is used by the test suite and is a convenient sink for small or
// ephemeral images that don't need to touch disk.
type MemoryDevice struct {
	buf []byte
}

// NewMemoryDevice returns an empty memory-backed device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{}
}

// NewMemoryDeviceFromBytes wraps an existing buffer for reading.
func NewMemoryDeviceFromBytes(b []byte) *MemoryDevice {
	return &MemoryDevice{buf: b}
}

func (d *MemoryDevice) ReadAt(offsetBytes int64, out []byte) error {
	if offsetBytes < 0 {
		return &xerr.IO{Op: "read", Err: xerr.ErrEndOfDevice}
	}
	end := offsetBytes + int64(len(out))
	if end > int64(len(d.buf)) {
		return xerr.ErrEndOfDevice
	}
	copy(out, d.buf[offsetBytes:end])
	return nil
}

func (d *MemoryDevice) WriteAt(offsetBytes int64, data []byte) error {
	if offsetBytes < 0 {
		return &xerr.IO{Op: "write", Err: xerr.ErrEndOfDevice}
	}
	end := offsetBytes + int64(len(data))
	if end > int64(len(d.buf)) {
		grown := make([]byte, end)
		copy(grown, d.buf)
		d.buf = grown
	}
	copy(d.buf[offsetBytes:end], data)
	return nil
}

func (d *MemoryDevice) LenBytes() (int64, error) {
	return int64(len(d.buf)), nil
}

// Bytes returns the current backing buffer. Callers must not retain the
// slice across further writes that may reallocate it.
func (d *MemoryDevice) Bytes() []byte {
	return d.buf
}
