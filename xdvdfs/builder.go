package xdvdfs

import (
	"fmt"
	"sort"

	"github.com/charlesthegreat77/xdvdfs-go/cp1252"
	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// tableEntry is one child of a directory, ready to be packed into that
// directory's entry table. DataSector/DataSize are filled in once the
// sector planner has assigned extents to every node in the tree.
type tableEntry struct {
	Name       string
	NameBytes  []byte
	Attributes uint8
	DataSector uint32
	DataSize   uint32
}

// entryLoc records where a tableEntry's on-disk record landed once its
// directory's pages were packed, so a later phase can patch in the
// DataSector/DataSize fields after sector allocation runs.
type entryLoc struct {
	PageIndex int
	Offset    int
}

// preparedEntry pairs a tableEntry with its encoded name and dirent
// struct during layout.
type preparedEntry struct {
	entry *tableEntry
	dir   *dirent
	size  int
}

// sortEntries sorts entries by CP1252 case-folded name and rejects
// directories with two names that fold equal.
func sortEntries(dirName string, entries []*tableEntry) error {
	sort.Slice(entries, func(i, j int) bool {
		return cp1252.Compare(entries[i].NameBytes, entries[j].NameBytes) < 0
	})
	for i := 1; i < len(entries); i++ {
		if cp1252.Equal(entries[i-1].NameBytes, entries[i].NameBytes) {
			return &xerr.DuplicateName{Dir: dirName, Name: entries[i].Name}
		}
	}
	return nil
}

// buildDirectoryTable packs entries (already sorted and deduplicated by
// sortEntries) into one or more 2048-byte pages. Each page holds a
// balanced BST built by midpoint recursion over the slice of entries
// that fit, packed depth-first (pre-order, so each page's local BST
// root lands at byte offset 0). The sorted entries are cut greedily
// into contiguous ranges, one range per page; entries that don't fit
// in the current page start the next page's range with its own BST,
// reachable only by linear page scan, never by a BST edge into the
// previous page.
func buildDirectoryTable(dirName string, entries []*tableEntry) ([][]byte, []entryLoc, error) {
	if len(entries) == 0 {
		return nil, nil, nil
	}

	prepared := make([]*preparedEntry, len(entries))
	prefixSize := make([]int, len(entries)+1)
	for i, e := range entries {
		d := &dirent{
			Left:       -1,
			Right:      -1,
			DataSector: e.DataSector,
			DataSize:   e.DataSize,
			Attributes: e.Attributes,
			NameBytes:  e.NameBytes,
		}
		p := &preparedEntry{entry: e, dir: d, size: d.encodedSize()}
		if p.size+4 > SectorSize {
			return nil, nil, fmt.Errorf("directory %q: entry %q: %w", dirName, e.Name, xerr.ErrNameTooLong)
		}
		prepared[i] = p
		prefixSize[i+1] = prefixSize[i] + p.size
	}

	var pages [][]byte
	locs := make([]entryLoc, len(entries))
	lo := 0
	for lo < len(prepared) {
		hi := lo + 1
		for hi < len(prepared) && (prefixSize[hi+1]-prefixSize[lo])+4 <= SectorSize {
			hi++
		}
		pageIndex := len(pages)
		buf := make([]byte, 0, SectorSize)
		placeRange(&buf, prepared, lo, hi, pageIndex, locs)
		// Terminal sentinel: closes the page for linear scan.
		if len(buf)+4 <= SectorSize {
			buf = append(buf, 0xFF, 0xFF, 0xFF, 0xFF)
		}
		padded := make([]byte, SectorSize)
		for i := range padded {
			padded[i] = 0xFF
		}
		copy(padded, buf)
		pages = append(pages, padded)
		lo = hi
	}
	return pages, locs, nil
}

// placeRange lays out entries[lo:hi] depth-first (pre-order) into buf,
// recording each entry's page-relative offset in locs.
func placeRange(buf *[]byte, prepared []*preparedEntry, lo, hi, pageIndex int, locs []entryLoc) int32 {
	if lo >= hi {
		return -1
	}
	mid := lo + (hi-lo)/2
	selfOffset := int32(len(*buf))
	p := prepared[mid]
	*buf = append(*buf, make([]byte, p.size)...)
	locs[mid] = entryLoc{PageIndex: pageIndex, Offset: int(selfOffset)}

	leftOffset := placeRange(buf, prepared, lo, mid, pageIndex, locs)
	rightOffset := placeRange(buf, prepared, mid+1, hi, pageIndex, locs)
	p.dir.Left = leftOffset
	p.dir.Right = rightOffset
	marshalDirent((*buf)[selfOffset:], p.dir)
	return selfOffset
}

// patchEntryExtent rewrites the DataSector/DataSize fields of an
// already-packed dirent record in place, once the sector planner has
// assigned the child's extent.
func patchEntryExtent(pages [][]byte, loc entryLoc, sector, size uint32) {
	buf := pages[loc.PageIndex][loc.Offset:]
	putUint32LE(buf[4:8], sector)
	putUint32LE(buf[8:12], size)
}

func putUint32LE(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}
