package ast

import (
	"bytes"
	"errors"
	"testing"
)

func sampleFile() *File {
	b := NewBuilder("a.c")
	intT := b.At(1).TName("int")
	x := b.Decl("x", []Spec{SpecStatic}, intT, b.Int("5"))
	arr := b.At(2).Decl("t", nil, b.TArray(b.TName("int"), NoNodeID),
		b.InitList(b.Int("1"), b.DesigIndex(b.Int("2"), b.Binary("+", b.Int("3"), b.Ident("k")))))
	return b.Top(x, arr).File()
}

func TestEncodeDecodeKeepsTree(t *testing.T) {
	f := sampleFile()
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Module != "a.c" || got.Len() != f.Len() {
		t.Fatalf("unexpected tree: module=%q len=%d", got.Module, got.Len())
	}
	root := got.Node(got.Root)
	if root.Kind != KindModule || len(root.Children) != 2 {
		t.Fatalf("unexpected root %+v", root)
	}
	decl := got.Node(root.Children[0])
	if decl.Text != "x" || !decl.HasSpec(SpecStatic) || decl.Line != 1 {
		t.Fatalf("unexpected decl %+v", decl)
	}
}

func TestDecodeRejectsUnsupportedFormat(t *testing.T) {
	f := sampleFile()
	f.Format = "2.0.0"
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestValidateRejectsForwardChildren(t *testing.T) {
	f := sampleFile()
	f.Nodes[1].Children = []NodeID{NodeID(len(f.Nodes) - 1)}
	if err := f.Validate(); !errors.Is(err, ErrBadTree) {
		t.Fatalf("expected ErrBadTree, got %v", err)
	}
}

func TestPrintExpr(t *testing.T) {
	f := sampleFile()
	root := f.Node(f.Root)
	decl := f.Node(root.Children[1])
	if got := PrintExpr(f, decl.Child(1)); got != "{1, [2] = (3 + k)}" {
		t.Fatalf("PrintExpr=%q", got)
	}
}
