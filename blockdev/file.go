package blockdev

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// FileDevice is a block device backed by an *os.File. Reads and writes
// are issued with ReadAt/WriteAt so the device is safe to use without a
// shared seek cursor.
type FileDevice struct {
	f *os.File
}

// OpenFileDevice opens path for the capability the caller asked for.
// writable controls whether the file is opened O_RDWR|O_CREATE (packer
// output) or O_RDONLY (reader input).
func OpenFileDevice(path string, writable bool) (*FileDevice, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return &FileDevice{f: f}, nil
}

// NewFileDevice wraps an already-open file.
func NewFileDevice(f *os.File) *FileDevice {
	return &FileDevice{f: f}
}

func (d *FileDevice) ReadAt(offsetBytes int64, out []byte) error {
	_, err := d.f.ReadAt(out, offsetBytes)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return xerr.ErrEndOfDevice
	}
	if err != nil {
		return &xerr.IO{Op: "read", Err: err}
	}
	return nil
}

func (d *FileDevice) WriteAt(offsetBytes int64, data []byte) error {
	if _, err := d.f.WriteAt(data, offsetBytes); err != nil {
		return &xerr.IO{Op: "write", Err: err}
	}
	return nil
}

func (d *FileDevice) LenBytes() (int64, error) {
	info, err := d.f.Stat()
	if err != nil {
		return 0, &xerr.IO{Op: "stat", Err: err}
	}
	return info.Size(), nil
}

// Truncate resizes the backing file. The copier does not call it; it
// pads the final image with WriteAt.
func (d *FileDevice) Truncate(sizeBytes int64) error {
	if err := d.f.Truncate(sizeBytes); err != nil {
		return &xerr.IO{Op: "truncate", Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
