package xdvdfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesthegreat77/xdvdfs-go/blockdev"
	"github.com/charlesthegreat77/xdvdfs-go/cp1252"
	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// Entry is the decoded, user-facing view of a directory entry: either
// a file or a subdirectory, with the location of its data on the
// volume.
type Entry struct {
	Name       string
	IsDir      bool
	Attributes uint8
	Sector     uint32
	SizeBytes  uint32
}

// Volume is an opened, read-only view of an XDVDFS image: a probed
// base offset plus the decoded volume descriptor.
type Volume struct {
	dev    blockdev.Device
	desc   *VolumeDescriptor
	layout Layout
}

// OpenVolume probes dev for each of the four known base-offset layouts
// in turn and returns the first one whose volume descriptor sector
// validates. It fails with xerr.ErrNoValidVolume if none do.
func OpenVolume(dev blockdev.Device) (*Volume, error) {
	for _, cand := range candidateLayouts {
		offDev := blockdev.NewOffsetDevice(dev, cand.baseSector*SectorSize)
		sector := make([]byte, SectorSize)
		if err := offDev.ReadAt(volumeDescriptorSector*SectorSize, sector); err != nil {
			continue
		}
		desc, err := unmarshalVolumeDescriptor(sector)
		if err != nil {
			continue
		}
		return &Volume{dev: offDev, desc: desc, layout: cand.layout}, nil
	}
	return nil, xerr.ErrNoValidVolume
}

// Layout reports which of the four base-offset conventions this volume
// was found at.
func (v *Volume) Layout() Layout { return v.layout }

// CreationTime returns the volume's creation timestamp.
func (v *Volume) CreationTime() time.Time {
	return filetimeToTime(v.desc.CreationTime)
}

// Root returns the synthetic entry describing the volume's root
// directory.
func (v *Volume) Root() Entry {
	return Entry{
		Name:       "",
		IsDir:      true,
		Attributes: AttrDirectory,
		Sector:     v.desc.RootTableSector,
		SizeBytes:  v.desc.RootTableSize,
	}
}

func (v *Volume) readSectors(sector uint32, count uint32) ([]byte, error) {
	buf := make([]byte, uint64(count)*SectorSize)
	if err := v.dev.ReadAt(int64(sector)*SectorSize, buf); err != nil {
		return nil, fmt.Errorf("reading sector %d: %w", sector, err)
	}
	return buf, nil
}

// pageCount returns how many 2048-byte pages a directory's table
// occupies.
func pageCount(sizeBytes uint32) uint32 {
	return (sizeBytes + SectorSize - 1) / SectorSize
}

// enumerate returns every entry in a directory table in lexicographic
// order: an in-order BST walk (via Left/Right edges) within each page,
// one page after another in disk order. Page order alone reaches
// overflow pages, which hold a higher contiguous sorted sub-range and
// aren't linked in by any BST edge from an earlier page; the in-order
// walk within each page is what keeps the overall result sorted rather
// than merely the on-disk record order.
func (v *Volume) enumerate(dir Entry) ([]Entry, error) {
	if !dir.IsDir {
		return nil, xerr.ErrNotADirectory
	}
	pages := pageCount(dir.SizeBytes)
	if pages == 0 {
		return nil, nil
	}
	raw, err := v.readSectors(dir.Sector, pages)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for p := uint32(0); p < pages; p++ {
		page := raw[p*SectorSize : (p+1)*SectorSize]
		if err := inOrderWalkPage(page, dir.Name, p, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// inOrderWalkPage performs a recursive in-order traversal of the
// page-local BST rooted at offset 0, appending each entry to out in
// ascending case-folded order.
func inOrderWalkPage(page []byte, dirName string, pageIndex uint32, out *[]Entry) error {
	var walk func(offset int) error
	walk = func(offset int) error {
		d, _, err := unmarshalDirent(page[offset:])
		if err != nil {
			return fmt.Errorf("directory %q page %d: %w", dirName, pageIndex, err)
		}
		if d == nil {
			return nil
		}
		if !d.leftIsNone() {
			if err := walk(int(d.Left)); err != nil {
				return err
			}
		}
		name, err := d.decodedName()
		if err != nil {
			return fmt.Errorf("directory %q: %w", dirName, err)
		}
		*out = append(*out, Entry{
			Name:       name,
			IsDir:      d.isDirectory(),
			Attributes: d.Attributes,
			Sector:     d.DataSector,
			SizeBytes:  d.DataSize,
		})
		if !d.rightIsNone() {
			if err := walk(int(d.Right)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0)
}

// Enumerate lists the immediate children of a directory entry in
// ascending case-folded order.
func (v *Volume) Enumerate(dir Entry) ([]Entry, error) {
	return v.enumerate(dir)
}

// lookup finds a single named child of dir. Single-page directories
// use the on-disk BST directly; multi-page directories fall back to a
// full scan, since a page's local BST only covers the contiguous
// sorted sub-range of names that landed on that page.
func (v *Volume) lookup(dir Entry, name string) (*Entry, error) {
	if !dir.IsDir {
		return nil, xerr.ErrNotADirectory
	}
	nameBytes, err := cp1252.Encode(name)
	if err != nil {
		return nil, fmt.Errorf("encoding name %q: %w", name, err)
	}
	pages := pageCount(dir.SizeBytes)
	if pages == 0 {
		return nil, xerr.ErrNotFound
	}
	if pages == 1 {
		raw, err := v.readSectors(dir.Sector, 1)
		if err != nil {
			return nil, err
		}
		e, err := searchPage(raw, nameBytes)
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
		return nil, xerr.ErrNotFound
	}
	all, err := v.enumerate(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		eb, err := cp1252.Encode(e.Name)
		if err != nil {
			continue
		}
		if cp1252.Equal(eb, nameBytes) {
			cp := e
			return &cp, nil
		}
	}
	return nil, xerr.ErrNotFound
}

// searchPage performs a binary search over a single page's on-disk
// BST, starting from the record at offset 0 (the page-local root).
func searchPage(page []byte, nameBytes []byte) (*Entry, error) {
	offset := 0
	for {
		d, _, err := unmarshalDirent(page[offset:])
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, nil
		}
		cmp := cp1252.Compare(nameBytes, d.NameBytes)
		switch {
		case cmp == 0:
			name, err := d.decodedName()
			if err != nil {
				return nil, err
			}
			return &Entry{
				Name:       name,
				IsDir:      d.isDirectory(),
				Attributes: d.Attributes,
				Sector:     d.DataSector,
				SizeBytes:  d.DataSize,
			}, nil
		case cmp < 0:
			if d.leftIsNone() {
				return nil, nil
			}
			offset = int(d.Left)
		default:
			if d.rightIsNone() {
				return nil, nil
			}
			offset = int(d.Right)
		}
	}
}

// WalkPath resolves a slash-separated path from the volume root,
// descending one directory lookup at a time.
func (v *Volume) WalkPath(path string) (*Entry, error) {
	root := v.Root()
	path = strings.Trim(path, "/")
	if path == "" {
		return &root, nil
	}
	segments := strings.Split(path, "/")
	cur := root
	for i, seg := range segments {
		e, err := v.lookup(cur, seg)
		if err != nil {
			return nil, err
		}
		if i < len(segments)-1 && !e.IsDir {
			return nil, xerr.ErrNotADirectory
		}
		cur = *e
	}
	return &cur, nil
}

// ReadDataAll reads the full contents of a file entry.
func (v *Volume) ReadDataAll(e Entry) ([]byte, error) {
	if e.IsDir {
		return nil, xerr.ErrIsADirectory
	}
	if e.SizeBytes == 0 {
		return nil, nil
	}
	sectors := pageCount(e.SizeBytes)
	raw, err := v.readSectors(e.Sector, sectors)
	if err != nil {
		return nil, err
	}
	return raw[:e.SizeBytes], nil
}
