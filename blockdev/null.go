package blockdev

// NullDevice discards every write and always reads as zeroes. It lets
// the planner run a dry pass — computing a sector plan and the
// resulting image size — without allocating or touching a real sink.
type NullDevice struct {
	size int64
}

func NewNullDevice() *NullDevice {
	return &NullDevice{}
}

func (d *NullDevice) ReadAt(offsetBytes int64, out []byte) error {
	for i := range out {
		out[i] = 0
	}
	return nil
}

func (d *NullDevice) WriteAt(offsetBytes int64, data []byte) error {
	if end := offsetBytes + int64(len(data)); end > d.size {
		d.size = end
	}
	return nil
}

func (d *NullDevice) LenBytes() (int64, error) {
	return d.size, nil
}
