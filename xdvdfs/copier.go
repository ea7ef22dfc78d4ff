package xdvdfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charlesthegreat77/xdvdfs-go/blockdev"
)

// PackOptions controls how Pack lays out and annotates a new image.
type PackOptions struct {
	// CreationTime overrides the volume descriptor's FILETIME. Nil
	// means a raw FILETIME of 0, for reproducible from-scratch builds
	// that record no meaningful creation time.
	CreationTime *time.Time
	Progress     ProgressSink
}

const rootTableStartSector = volumeDescriptorSector + 1

// Pack builds a complete XDVDFS image from files onto sink: it builds
// the directory tree, packs every directory's entry table, assigns
// sectors in strictly increasing breadth-first order, and writes the
// volume descriptor, every directory table, and every file's data in
// that same increasing order -- a property streaming sinks depend on.
func Pack(sink blockdev.ReadWriteSizer, files []SourceFile, opts PackOptions) error {
	root, err := buildTreeFromSourceFiles(files)
	if err != nil {
		return err
	}

	for _, f := range files {
		emit(opts.Progress, ProgressEvent{Kind: Discovered, Path: f.ImagePath, Bytes: f.SizeBytes})
	}

	if err := buildTables(root); err != nil {
		return err
	}

	total, err := assignSectors(root, rootTableStartSector)
	if err != nil {
		return err
	}
	patchExtents(root)

	emitPlanned(opts.Progress, root, "")

	var creationTicks uint64
	if opts.CreationTime != nil {
		creationTicks = timeToFiletime(*opts.CreationTime)
	}
	desc := &VolumeDescriptor{
		RootTableSector: root.DataSector,
		RootTableSize:   root.DataSizeBytes,
		CreationTime:    creationTicks,
	}
	if err := sink.WriteAt(volumeDescriptorSector*SectorSize, desc.marshal()); err != nil {
		return fmt.Errorf("writing volume descriptor: %w", err)
	}

	if err := writeTree(sink, root, "", opts.Progress); err != nil {
		return err
	}

	if err := padToSectorCount(sink, total); err != nil {
		return err
	}

	emit(opts.Progress, ProgressEvent{Kind: Finished, Bytes: uint64(total) * SectorSize})
	return nil
}

// padToSectorCount extends sink to total sectors if nothing landed in
// its final sector -- the case of an empty root, whose table sector is
// reserved but never written because the descriptor points at sector 0
// instead. The pad sector is 0xFF-filled, matching an unused directory
// table page.
func padToSectorCount(sink blockdev.ReadWriteSizer, total uint32) error {
	want := int64(total) * SectorSize
	got, err := sink.LenBytes()
	if err != nil {
		return fmt.Errorf("checking image length: %w", err)
	}
	if got >= want {
		return nil
	}
	pad := make([]byte, want-got)
	for i := range pad {
		pad[i] = 0xFF
	}
	if err := sink.WriteAt(got, pad); err != nil {
		return fmt.Errorf("padding image to %d sectors: %w", total, err)
	}
	return nil
}

func emitPlanned(sink ProgressSink, n *planNode, prefix string) {
	if sink == nil {
		return
	}
	path := prefix
	if n.Name != "" {
		if prefix != "" {
			path = prefix + "/" + n.Name
		} else {
			path = n.Name
		}
	}
	if n.Name != "" || prefix != "" {
		emit(sink, ProgressEvent{Kind: Planned, Path: path, Sector: n.DataSector, SizeBytes: n.DataSizeBytes})
	}
	for _, c := range n.Children {
		emitPlanned(sink, c, path)
	}
}

// writeTree writes every node's bytes in the same breadth-first order
// assignSectors used to allocate them, so sector numbers increase
// monotonically across the whole write pass.
func writeTree(sink blockdev.BlockDeviceWrite, root *planNode, prefix string, progress ProgressSink) error {
	if err := writeNodePages(sink, root); err != nil {
		return err
	}
	queue := []*planNode{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		for _, c := range dir.Children {
			if !c.IsDir {
				continue
			}
			if err := writeNodePages(sink, c); err != nil {
				return err
			}
			emit(progress, ProgressEvent{Kind: Wrote, Path: c.Name, Sector: c.DataSector, SizeBytes: c.DataSizeBytes})
			queue = append(queue, c)
		}
		for _, c := range dir.Children {
			if c.IsDir {
				continue
			}
			if err := writeFileData(sink, c); err != nil {
				return err
			}
			emit(progress, ProgressEvent{Kind: Wrote, Path: c.Name, Sector: c.DataSector, SizeBytes: c.DataSizeBytes})
		}
	}
	return nil
}

func writeNodePages(sink blockdev.BlockDeviceWrite, n *planNode) error {
	for i, page := range n.pages {
		offset := (int64(n.DataSector) + int64(i)) * SectorSize
		if err := sink.WriteAt(offset, page); err != nil {
			return fmt.Errorf("writing directory table sector %d: %w", int64(n.DataSector)+int64(i), err)
		}
	}
	return nil
}

func writeFileData(sink blockdev.BlockDeviceWrite, n *planNode) error {
	if n.SizeBytes == 0 {
		return nil
	}
	r, err := n.Open()
	if err != nil {
		return fmt.Errorf("opening %q: %w", n.Name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading %q: %w", n.Name, err)
	}
	padded := data
	if rem := len(data) % SectorSize; rem != 0 {
		padded = make([]byte, len(data)+(SectorSize-rem))
		copy(padded, data)
	}
	if err := sink.WriteAt(int64(n.DataSector)*SectorSize, padded); err != nil {
		return fmt.Errorf("writing %q data: %w", n.Name, err)
	}
	return nil
}

// Extract writes every file reachable from vol's root into destDir on
// the host filesystem, recreating the directory structure.
func Extract(v *Volume, destDir string, progress ProgressSink) error {
	return extractDir(v, v.Root(), destDir, "", progress)
}

func extractDir(v *Volume, dir Entry, destDir, relPrefix string, progress ProgressSink) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", destDir, err)
	}
	children, err := v.Enumerate(dir)
	if err != nil {
		return err
	}
	for _, c := range children {
		rel := c.Name
		if relPrefix != "" {
			rel = relPrefix + "/" + c.Name
		}
		hostPath := filepath.Join(destDir, c.Name)
		if c.IsDir {
			if err := extractDir(v, c, hostPath, rel, progress); err != nil {
				return err
			}
			continue
		}
		data, err := v.ReadDataAll(c)
		if err != nil {
			return fmt.Errorf("reading %q: %w", rel, err)
		}
		if err := os.WriteFile(hostPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", hostPath, err)
		}
		emit(progress, ProgressEvent{Kind: Wrote, Path: rel, Sector: c.Sector, SizeBytes: c.SizeBytes})
	}
	return nil
}
