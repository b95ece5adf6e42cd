package asm

import (
	"fmt"
	"slices"

	"github.com/dhamidi/asm65/handle"
)

// Node is a handle to an interned tree node. A node holds one reference to
// its token, its parent and each child for as long as its own payload is
// interned.
type Node struct {
	ctx *Context
	h   handle.Handle
}

func NewNode(ctx *Context, token, parent handle.Handle, children []handle.Handle) Node {
	if token != handle.Invalid {
		ctx.store.IncrementToken(token)
	}
	if parent != handle.Invalid {
		ctx.store.IncrementNode(parent)
	}
	for _, child := range children {
		ctx.store.IncrementNode(child)
	}

	h := ctx.handles.Generate()
	ctx.store.GenerateNode(h, NodePayload{
		Token:    token,
		Parent:   parent,
		Children: children,
	})
	return Node{ctx: ctx, h: h}
}

// AdoptNode takes a new reference to an existing node.
func AdoptNode(ctx *Context, h handle.Handle) Node {
	ctx.store.IncrementNode(h)
	return Node{ctx: ctx, h: h}
}

func (n Node) Handle() handle.Handle { return n.h }

func (n Node) Valid() bool {
	return n.ctx != nil && n.h != handle.Invalid &&
		n.ctx.store.IsInitialized() && n.ctx.store.ContainsNode(n.h)
}

func (n Node) Copy() Node {
	if n.Valid() {
		n.ctx.store.IncrementNode(n.h)
	}
	return n
}

func (n Node) Release() {
	if n.Valid() {
		releaseNode(n.ctx, n.h)
	}
}

// releaseNode drops one reference and, on eviction, the references the
// node held.
func releaseNode(ctx *Context, h handle.Handle) {
	_, payload := ctx.store.DecrementNode(h)
	if payload == nil {
		return
	}
	if payload.Token != handle.Invalid && ctx.store.ContainsToken(payload.Token) {
		ctx.store.DecrementToken(payload.Token)
	}
	if payload.Parent != handle.Invalid && ctx.store.ContainsNode(payload.Parent) {
		releaseNode(ctx, payload.Parent)
	}
	for _, child := range payload.Children {
		if ctx.store.ContainsNode(child) {
			releaseNode(ctx, child)
		}
	}
}

func (n Node) Payload() NodePayload {
	return n.ctx.store.NodeMetadata(n.h)
}

// Token returns a view of the node's token. The caller does not own it.
func (n Node) Token() Token {
	return Token{ctx: n.ctx, h: n.Payload().Token}
}

// Parent returns the parent handle, or the node's own handle for a root.
func (n Node) Parent() handle.Handle {
	if p := n.Payload().Parent; p != handle.Invalid {
		return p
	}
	return n.h
}

func (n Node) IsRoot() bool {
	return n.Payload().Parent == handle.Invalid
}

func (n Node) Children() []handle.Handle {
	return n.Payload().Children
}

func (n Node) Size() int {
	return len(n.Payload().Children)
}

func (n Node) At(index int) (handle.Handle, error) {
	children := n.Payload().Children
	if index < 0 || index >= len(children) {
		return handle.Invalid, fmt.Errorf("child %d of %d: %w", index, len(children), CodeInvalidChildIndex)
	}
	return children[index], nil
}

func (n Node) Add(child handle.Handle) {
	n.ctx.store.IncrementNode(child)
	n.ctx.store.updateNode(n.h, func(p *NodePayload) {
		p.Children = append(p.Children, child)
	})
}

func (n Node) Insert(child handle.Handle, index int) error {
	if size := n.Size(); index < 0 || index > size {
		return fmt.Errorf("insert at %d of %d: %w", index, size, CodeInvalidChildIndex)
	}
	n.ctx.store.IncrementNode(child)
	n.ctx.store.updateNode(n.h, func(p *NodePayload) {
		p.Children = slices.Insert(p.Children, index, child)
	})
	return nil
}

// Remove detaches the first occurrence of child.
func (n Node) Remove(child handle.Handle) error {
	index := slices.Index(n.Payload().Children, child)
	if index < 0 {
		return fmt.Errorf("remove %d: %w", child, CodeNodeNotFound)
	}
	n.ctx.store.updateNode(n.h, func(p *NodePayload) {
		p.Children = slices.Delete(p.Children, index, index+1)
	})
	releaseNode(n.ctx, child)
	return nil
}

// SetParent moves the parent reference from the old parent to h.
func (n Node) SetParent(h handle.Handle) {
	if h != handle.Invalid {
		n.ctx.store.IncrementNode(h)
	}
	var old handle.Handle
	n.ctx.store.updateNode(n.h, func(p *NodePayload) {
		old = p.Parent
		p.Parent = h
	})
	if old != handle.Invalid {
		releaseNode(n.ctx, old)
	}
}

// detach drops every parent and child link the node holds.
func (n Node) detach() {
	n.SetParent(handle.Invalid)

	var children []handle.Handle
	n.ctx.store.updateNode(n.h, func(p *NodePayload) {
		children = p.Children
		p.Children = nil
	})
	for _, child := range children {
		releaseNode(n.ctx, child)
	}
}

func (n Node) String() string {
	if !n.Valid() {
		return fmt.Sprintf("{%d invalid}", n.h)
	}
	p := n.Payload()
	return fmt.Sprintf("{%d parent=%d children=%v token=%s}", n.h, p.Parent, p.Children, n.Token())
}
