package xdvdfs

import (
	"fmt"
	"io"

	"github.com/charlesthegreat77/xdvdfs-go/cp1252"
	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// planNode is one file or directory in the tree being packed into an
// image. It is built by buildTreeFromSourceFiles from SourceFiles
// (host filesystem or another XDVDFS image) and progressively filled
// in by buildTables and assignSectors.
type planNode struct {
	Name       string
	Attributes uint8
	IsDir      bool

	// Files only.
	SizeBytes uint64
	Open      func() (io.ReadCloser, error)

	// Directories only, sorted by CP1252 fold order.
	Children []*planNode
	pages    [][]byte
	locs     []entryLoc

	DataSector    uint32
	DataSizeBytes uint32
}

func (n *planNode) isDirectory() bool { return n.IsDir }

// buildTables recursively packs every directory's entry table. A
// directory's own table depends only on its immediate children's
// names, attributes, and kind, so this runs in a single recursive
// pass (each directory's table before its children's), well before
// any sector numbers are known.
func buildTables(node *planNode) error {
	if !node.IsDir {
		return nil
	}
	entries := make([]*tableEntry, len(node.Children))
	for i, c := range node.Children {
		nameBytes, err := cp1252.Encode(c.Name)
		if err != nil {
			return fmt.Errorf("encoding name %q: %w", c.Name, err)
		}
		if len(nameBytes) > maxNameLength {
			return fmt.Errorf("name %q: %w", c.Name, xerr.ErrNameTooLong)
		}
		attrs := c.Attributes
		if c.IsDir {
			attrs |= AttrDirectory
		}
		entries[i] = &tableEntry{Name: c.Name, NameBytes: nameBytes, Attributes: attrs}
	}
	if err := sortEntries(node.Name, entries); err != nil {
		return err
	}
	// sortEntries reordered `entries`; mirror that order onto Children so
	// later phases (sector assignment, patching) stay index-aligned.
	reordered := make([]*planNode, len(entries))
	byName := make(map[string]*planNode, len(node.Children))
	for _, c := range node.Children {
		byName[c.Name] = c
	}
	for i, e := range entries {
		reordered[i] = byName[e.Name]
	}
	node.Children = reordered

	pages, locs, err := buildDirectoryTable(node.Name, entries)
	if err != nil {
		return err
	}
	node.pages = pages
	node.locs = locs

	for _, c := range node.Children {
		if err := buildTables(c); err != nil {
			return err
		}
	}
	return nil
}

// sectorsFor returns the number of 2048-byte sectors needed to hold n
// bytes.
func sectorsFor(n uint64) uint32 {
	return uint32((n + SectorSize - 1) / SectorSize)
}

// assignSectors walks the tree breadth-first, assigning each node's
// DataSector/DataSizeBytes in the order the copier must also emit
// bytes in: the root's table right after the volume descriptor, then
// per directory (processed in BFS order) its child directory tables,
// then its child files, in the directory's sorted order.
func assignSectors(root *planNode, startSector uint32) (uint32, error) {
	// An empty root has no table to point at: the volume descriptor
	// reports sector 0, size 0 rather than an extent at startSector,
	// even though startSector itself stays reserved (unused) space.
	if len(root.pages) == 0 {
		root.DataSector = 0
		root.DataSizeBytes = 0
	} else {
		root.DataSector = startSector
		root.DataSizeBytes = uint32(len(root.pages)) * SectorSize
	}
	cursor := uint64(startSector) + uint64(len(root.pages))

	queue := []*planNode{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		for _, c := range dir.Children {
			if !c.IsDir {
				continue
			}
			if cursor > maxSectorCount {
				return 0, xerr.ErrImageExceedsMaxSectors
			}
			c.DataSector = uint32(cursor)
			c.DataSizeBytes = uint32(len(c.pages)) * SectorSize
			cursor += uint64(len(c.pages))
		}
		for _, c := range dir.Children {
			if c.IsDir {
				continue
			}
			if cursor > maxSectorCount {
				return 0, xerr.ErrImageExceedsMaxSectors
			}
			c.DataSector = uint32(cursor)
			c.DataSizeBytes = uint32(c.SizeBytes)
			cursor += uint64(sectorsFor(c.SizeBytes))
		}
		for _, c := range dir.Children {
			if c.IsDir {
				queue = append(queue, c)
			}
		}
	}
	if cursor > maxSectorCount {
		return 0, xerr.ErrImageExceedsMaxSectors
	}
	// The root table's reserved sector stays part of the image even when
	// the root is empty and the descriptor points elsewhere.
	if minTotal := uint64(startSector) + 1; cursor < minTotal {
		cursor = minTotal
	}
	return uint32(cursor), nil
}

// patchExtents writes every child's assigned DataSector/DataSizeBytes
// into its parent's already-packed table bytes.
func patchExtents(node *planNode) {
	if !node.IsDir {
		return
	}
	for i, c := range node.Children {
		patchEntryExtent(node.pages, node.locs[i], c.DataSector, c.DataSizeBytes)
		patchExtents(c)
	}
}
