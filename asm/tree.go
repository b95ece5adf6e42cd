package asm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/asm65/handle"
)

type TreeType int

const (
	TreeBegin TreeType = iota
	TreeEnd
	TreeStatement
)

var treeTypeNames = map[TreeType]string{
	TreeBegin:     "Begin",
	TreeEnd:       "End",
	TreeStatement: "Statement",
}

func (t TreeType) String() string {
	if name, ok := treeTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Tree owns the nodes of one statement. Nodes are attached below the
// current cursor, which grammar rules move explicitly.
type Tree struct {
	ctx     *Context
	typ     TreeType
	nodes   map[handle.Handle]Node
	root    handle.Handle
	current handle.Handle
}

func NewTree(ctx *Context, typ TreeType) *Tree {
	return &Tree{
		ctx:   ctx,
		typ:   typ,
		nodes: make(map[handle.Handle]Node),
	}
}

func (t *Tree) Type() TreeType { return t.typ }

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int { return len(t.nodes) }

func (t *Tree) Empty() bool { return len(t.nodes) == 0 }

func (t *Tree) Root() handle.Handle    { return t.root }
func (t *Tree) Current() handle.Handle { return t.current }

func (t *Tree) Contains(h handle.Handle) bool {
	_, ok := t.nodes[h]
	return ok
}

func (t *Tree) Node(h handle.Handle) (Node, error) {
	n, ok := t.nodes[h]
	if !ok {
		return Node{}, fmt.Errorf("node %d: %w", h, CodeNodeNotFound)
	}
	return n, nil
}

// CurrentNode returns the node under the cursor.
func (t *Tree) CurrentNode() (Node, error) {
	return t.Node(t.current)
}

// Add creates a node for tok. The first node becomes the root and the
// cursor; later nodes are appended as children of the cursor, which stays
// put. The returned index addresses the new node among its siblings.
func (t *Tree) Add(tok Token) (int, error) {
	if t.Empty() {
		n := NewNode(t.ctx, tok.Handle(), handle.Invalid, nil)
		t.nodes[n.h] = n
		t.root = n.h
		t.current = n.h
		return 0, nil
	}

	parent, err := t.CurrentNode()
	if err != nil {
		return 0, err
	}

	n := NewNode(t.ctx, tok.Handle(), handle.Invalid, nil)
	index := parent.Size()
	parent.Add(n.h)
	n.SetParent(parent.h)
	t.nodes[n.h] = n
	return index, nil
}

func (t *Tree) MoveChild(h handle.Handle) error {
	if !t.Contains(h) {
		return fmt.Errorf("move to child %d: %w", h, CodeNodeNotFound)
	}
	t.current = h
	return nil
}

func (t *Tree) MoveChildIndex(index int) error {
	n, err := t.CurrentNode()
	if err != nil {
		return err
	}
	h, err := n.At(index)
	if err != nil {
		return fmt.Errorf("move to child: %w", err)
	}
	return t.MoveChild(h)
}

// MoveParent moves the cursor up; at the root it stays on the root.
func (t *Tree) MoveParent() error {
	n, err := t.CurrentNode()
	if err != nil {
		return err
	}
	parent := n.Parent()
	if !t.Contains(parent) {
		return fmt.Errorf("move to parent %d: %w", parent, CodeNodeNotFound)
	}
	t.current = parent
	return nil
}

func (t *Tree) MoveRoot() error {
	if !t.Contains(t.root) {
		return fmt.Errorf("move to root %d: %w", t.root, CodeNodeNotFound)
	}
	t.current = t.root
	return nil
}

// Walk visits the nodes in pre-order with their depth. Returning false
// stops the walk.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	if t.Empty() {
		return
	}
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(h handle.Handle, depth int, fn func(Node, int) bool) bool {
	n, ok := t.nodes[h]
	if !ok {
		return true
	}
	if !fn(n, depth) {
		return false
	}
	for _, child := range n.Children() {
		if !t.walk(child, depth+1, fn) {
			return false
		}
	}
	return true
}

// Release breaks every link between the tree's nodes and drops the tree's
// own references, evicting the nodes from the store.
func (t *Tree) Release() {
	if !t.ctx.store.IsInitialized() {
		t.Clear()
		return
	}
	for _, n := range t.nodes {
		if n.Valid() {
			n.detach()
		}
	}
	for _, n := range t.nodes {
		n.Release()
	}
	t.Clear()
}

// Clear forgets the nodes without touching their references.
func (t *Tree) Clear() {
	t.nodes = make(map[handle.Handle]Node)
	t.root = handle.Invalid
	t.current = handle.Invalid
}

func (t *Tree) String() string {
	var b strings.Builder
	b.WriteString(t.typ.String())
	b.WriteByte('\n')
	t.Walk(func(n Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString(n.Token().String())
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
