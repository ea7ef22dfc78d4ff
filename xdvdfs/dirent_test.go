package xdvdfs

import (
	"bytes"
	"testing"
)

func TestMarshalUnmarshalDirentRoundTrip(t *testing.T) {
	d := &dirent{
		Left:       -1,
		Right:      -1,
		DataSector: 34,
		DataSize:   3,
		Attributes: 0,
		NameBytes:  []byte("foo.txt"),
	}
	buf := make([]byte, SectorSize)
	n := marshalDirent(buf, d)
	if n != d.encodedSize() {
		t.Fatalf("marshalDirent wrote %d bytes, want %d", n, d.encodedSize())
	}
	if n%4 != 0 {
		t.Fatalf("encoded size %d is not 4-byte aligned", n)
	}

	got, size, err := unmarshalDirent(buf)
	if err != nil {
		t.Fatalf("unmarshalDirent: %v", err)
	}
	if size != n {
		t.Fatalf("unmarshalDirent consumed %d bytes, want %d", size, n)
	}
	if got.DataSector != d.DataSector || got.DataSize != d.DataSize || got.Attributes != d.Attributes {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, d)
	}
	if !bytes.Equal(got.NameBytes, d.NameBytes) {
		t.Fatalf("name mismatch: %q vs %q", got.NameBytes, d.NameBytes)
	}
	if !got.leftIsNone() || !got.rightIsNone() {
		t.Fatalf("expected both subtrees absent, got left=%d right=%d", got.Left, got.Right)
	}
}

func TestUnmarshalDirentPageTerminator(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, SectorSize)
	d, size, err := unmarshalDirent(buf)
	if err != nil {
		t.Fatalf("unmarshalDirent: %v", err)
	}
	if d != nil || size != 0 {
		t.Fatalf("expected terminator (nil, 0), got (%+v, %d)", d, size)
	}
}

func TestUnmarshalDirentTruncated(t *testing.T) {
	_, _, err := unmarshalDirent([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error decoding a truncated entry")
	}
}

func TestDirentIsDirectory(t *testing.T) {
	d := &dirent{Attributes: AttrDirectory | AttrReadOnly}
	if !d.isDirectory() {
		t.Fatal("expected isDirectory to be true with AttrDirectory set")
	}
	d2 := &dirent{Attributes: AttrReadOnly}
	if d2.isDirectory() {
		t.Fatal("expected isDirectory to be false without AttrDirectory")
	}
}

func TestAlign4(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 2: 4, 3: 4, 4: 4, 5: 8}
	for in, want := range cases {
		if got := align4(in); got != want {
			t.Errorf("align4(%d) = %d, want %d", in, got, want)
		}
	}
}
