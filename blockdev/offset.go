package blockdev

// OffsetDevice shifts every access by a fixed base offset in bytes. The
// volume reader uses one of these per image-layout candidate (XISO,
// XGD1, XGD2, XGD3) so the rest of the core only ever deals in
// volume-relative offsets.
type OffsetDevice struct {
	inner      Device
	baseOffset int64
}

// NewOffsetDevice wraps inner so that ReadAt(0, ...) reads baseOffset
// bytes into the underlying device.
func NewOffsetDevice(inner Device, baseOffset int64) *OffsetDevice {
	return &OffsetDevice{inner: inner, baseOffset: baseOffset}
}

func (d *OffsetDevice) ReadAt(offsetBytes int64, out []byte) error {
	return d.inner.ReadAt(d.baseOffset+offsetBytes, out)
}

// BaseOffset returns the byte offset this device adds to every access.
func (d *OffsetDevice) BaseOffset() int64 {
	return d.baseOffset
}
