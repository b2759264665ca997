package ast

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is the tree-format version written by Encode.
const FormatVersion = "1.2.0"

// SupportedFormats is the constraint every decoded tree must satisfy.
const SupportedFormats = ">= 1.0.0, < 2.0.0"

// File is the annotated syntax tree of one module, as produced by the
// external parser. Nodes[0] is a reserved sentinel.
type File struct {
	Producer string `msgpack:"producer"`
	Format   string `msgpack:"format"`
	Module   string `msgpack:"module"`
	Path     string `msgpack:"path,omitempty"`
	Nodes    []Node `msgpack:"nodes"`
	Root     NodeID `msgpack:"root"`
}

// Node returns the node for id or nil.
func (f *File) Node(id NodeID) *Node {
	if f == nil || id == NoNodeID || int(id) >= len(f.Nodes) {
		return nil
	}
	return &f.Nodes[id]
}

// Len reports the number of real nodes.
func (f *File) Len() int {
	if f == nil || len(f.Nodes) == 0 {
		return 0
	}
	return len(f.Nodes) - 1
}

var (
	ErrBadTree     = errors.New("malformed syntax tree")
	ErrUnsupported = errors.New("unsupported tree format")
)

// Validate checks the format version and that every child reference is in range.
func (f *File) Validate() error {
	constraint, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(f.Format)
	if err != nil {
		return fmt.Errorf("%w: format %q: %v", ErrUnsupported, f.Format, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: format %s does not satisfy %s", ErrUnsupported, v, SupportedFormats)
	}
	if len(f.Nodes) == 0 || f.Nodes[0].Kind != KindInvalid {
		return fmt.Errorf("%w: missing sentinel node", ErrBadTree)
	}
	root := f.Node(f.Root)
	if root == nil || root.Kind != KindModule {
		return fmt.Errorf("%w: root is not a module", ErrBadTree)
	}
	for i := range f.Nodes {
		for _, c := range f.Nodes[i].Children {
			if int(c) >= len(f.Nodes) {
				return fmt.Errorf("%w: node %d references child %d out of range", ErrBadTree, i, c)
			}
			// дети всегда создаются раньше родителя
			if c != NoNodeID && int(c) >= i {
				return fmt.Errorf("%w: node %d references forward child %d", ErrBadTree, i, c)
			}
		}
	}
	return nil
}

// Encode writes f as msgpack.
func Encode(w io.Writer, f *File) error {
	if f.Format == "" {
		f.Format = FormatVersion
	}
	return msgpack.NewEncoder(w).Encode(f)
}

// Decode reads and validates one msgpack tree.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTree, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ReadFile decodes the tree stored at path.
func ReadFile(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	f, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Path == "" {
		f.Path = path
	}
	return f, nil
}

// WriteFile encodes f to path through a temp file and an atomic rename.
func WriteFile(path string, f *File) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := Encode(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp.Name(), path)
}
