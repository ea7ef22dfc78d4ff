package xdvdfs

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// SourceFile is one file destined for an image, already resolved to
// its final slash-separated image path (the path-rewrite engine's
// output). Open is called lazily, once per pack, when the file's
// bytes are actually written.
type SourceFile struct {
	ImagePath string
	SizeBytes uint64
	Open      func() (io.ReadCloser, error)
}

// WalkHostDir lists every regular file under root recursively,
// returning each one's path relative to root (slash-separated) and its
// size, without opening any of them. Intended to feed a path-rewrite
// engine, which produces the SourceFile list Pack actually consumes.
func WalkHostDir(root string) ([]SourceFile, error) {
	var out []SourceFile
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		path := filepath.ToSlash(rel)
		out = append(out, SourceFile{
			ImagePath: path,
			SizeBytes: uint64(info.Size()),
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WalkVolume lists every file reachable from a volume's root,
// returning SourceFiles that read their bytes back out of that same
// volume. This lets Pack repack an existing XDVDFS image, e.g. after
// running it back through the path-rewrite engine.
func WalkVolume(v *Volume) ([]SourceFile, error) {
	var out []SourceFile
	var walk func(dir Entry, prefix string) error
	walk = func(dir Entry, prefix string) error {
		children, err := v.Enumerate(dir)
		if err != nil {
			return err
		}
		for _, c := range children {
			path := c.Name
			if prefix != "" {
				path = prefix + "/" + c.Name
			}
			if c.IsDir {
				if err := walk(c, path); err != nil {
					return err
				}
				continue
			}
			entry := c
			out = append(out, SourceFile{
				ImagePath: path,
				SizeBytes: uint64(entry.SizeBytes),
				Open: func() (io.ReadCloser, error) {
					data, err := v.ReadDataAll(entry)
					if err != nil {
						return nil, err
					}
					return io.NopCloser(newByteReader(data)), nil
				},
			})
		}
		return nil
	}
	if err := walk(v.Root(), ""); err != nil {
		return nil, err
	}
	return out, nil
}

func newByteReader(b []byte) io.Reader {
	return &byteReader{b: b}
}

type byteReader struct {
	b []byte
	i int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}

// buildTreeFromSourceFiles assembles the nested planNode directory
// tree that buildTables/assignSectors operate on, detecting colliding
// image-path mappings along the way.
func buildTreeFromSourceFiles(files []SourceFile) (*planNode, error) {
	root := &planNode{Name: "", IsDir: true}
	seen := make(map[string]bool)

	for _, f := range files {
		segments := splitImagePath(f.ImagePath)
		if len(segments) == 0 {
			continue
		}
		if seen[f.ImagePath] {
			return nil, &xerr.CollidingMapping{ImagePath: f.ImagePath}
		}
		seen[f.ImagePath] = true

		cur := root
		for i, seg := range segments {
			last := i == len(segments)-1
			if last {
				cur.Children = append(cur.Children, &planNode{
					Name:      seg,
					IsDir:     false,
					SizeBytes: f.SizeBytes,
					Open:      f.Open,
				})
				continue
			}
			child := findChildDir(cur, seg)
			if child == nil {
				child = &planNode{Name: seg, IsDir: true}
				cur.Children = append(cur.Children, child)
			}
			cur = child
		}
	}
	sortTreeNames(root)
	return root, nil
}

func findChildDir(n *planNode, name string) *planNode {
	for _, c := range n.Children {
		if c.IsDir && c.Name == name {
			return c
		}
	}
	return nil
}

func splitImagePath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// sortTreeNames orders every directory's immediate children list so
// downstream stages have a deterministic iteration order even before
// buildTables imposes CP1252 fold order on the final tables.
func sortTreeNames(n *planNode) {
	if !n.IsDir {
		return
	}
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
	for _, c := range n.Children {
		sortTreeNames(c)
	}
}
