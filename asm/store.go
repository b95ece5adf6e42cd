package asm

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dhamidi/asm65/handle"
	"github.com/tliron/commonlog"
)

var storeLog = commonlog.GetLogger("asm65.store")

// TokenPayload is the interned data behind a Token handle.
type TokenPayload struct {
	Type    TokenType
	Subtype Subtype
	Key     string
	Value   int32
	Row     int
	Column  int
}

// NodePayload is the interned data behind a Node handle. Parent is
// handle.Invalid for a root.
type NodePayload struct {
	Token    handle.Handle
	Parent   handle.Handle
	Children []handle.Handle
}

type tokenEntry struct {
	payload TokenPayload
	count   uint32
}

type nodeEntry struct {
	payload NodePayload
	count   uint32
}

// Store owns every token and node payload. An entry is evicted when its
// count drops to zero, and the handle is released in the allocator in the
// same critical section. Misuse panics.
type Store struct {
	mu          sync.Mutex
	handles     *handle.Allocator
	initialized bool
	tokens      map[handle.Handle]*tokenEntry
	nodes       map[handle.Handle]*nodeEntry
}

func NewStore(handles *handle.Allocator) *Store {
	return &Store{handles: handles}
}

func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		panic(ErrAlreadyInitialized)
	}
	s.initialized = true
	s.tokens = make(map[handle.Handle]*tokenEntry)
	s.nodes = make(map[handle.Handle]*nodeEntry)
}

// Uninitialize drops every remaining entry. Entries still present here were
// leaked by an owner that never released them.
func (s *Store) Uninitialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	if len(s.tokens) > 0 || len(s.nodes) > 0 {
		storeLog.Warningf("uninitialize with %d token(s) and %d node(s) still referenced", len(s.tokens), len(s.nodes))
		for h, e := range s.tokens {
			storeLog.Debugf("leaked token %d (count %d): %s", h, e.count, e.payload.Type)
		}
		for h, e := range s.nodes {
			storeLog.Debugf("leaked node %d (count %d)", h, e.count)
		}
	}
	s.initialized = false
	s.tokens = nil
	s.nodes = nil
}

func (s *Store) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Size returns the number of token and node entries.
func (s *Store) Size() (tokens, nodes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	return len(s.tokens), len(s.nodes)
}

func (s *Store) GenerateToken(h handle.Handle, payload TokenPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	if _, ok := s.tokens[h]; ok {
		panic(fmt.Errorf("token %d: %w", h, ErrDuplicate))
	}
	s.tokens[h] = &tokenEntry{payload: payload, count: 1}
}

func (s *Store) GenerateNode(h handle.Handle, payload NodePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	if _, ok := s.nodes[h]; ok {
		panic(fmt.Errorf("node %d: %w", h, ErrDuplicate))
	}
	payload.Children = slices.Clone(payload.Children)
	s.nodes[h] = &nodeEntry{payload: payload, count: 1}
}

func (s *Store) ContainsToken(h handle.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	_, ok := s.tokens[h]
	return ok
}

func (s *Store) ContainsNode(h handle.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkLocked()
	_, ok := s.nodes[h]
	return ok
}

func (s *Store) TokenMetadata(h handle.Handle) TokenPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenLocked(h).payload
}

// NodeMetadata returns a copy of the payload; the children slice is not
// shared with the store.
func (s *Store) NodeMetadata(h handle.Handle) NodePayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := s.nodeLocked(h).payload
	payload.Children = slices.Clone(payload.Children)
	return payload
}

func (s *Store) TokenReferences(h handle.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenLocked(h).count
}

func (s *Store) NodeReferences(h handle.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nodeLocked(h).count
}

func (s *Store) IncrementToken(h handle.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.tokenLocked(h)
	e.count++
	return e.count
}

func (s *Store) IncrementNode(h handle.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.nodeLocked(h)
	e.count++
	return e.count
}

func (s *Store) DecrementToken(h handle.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.tokenLocked(h)
	e.count--
	if e.count == 0 {
		delete(s.tokens, h)
		s.release(h)
	}
	return e.count
}

// DecrementNode drops one reference. When the node is evicted its payload
// is returned so the caller can release the links it held.
func (s *Store) DecrementNode(h handle.Handle) (uint32, *NodePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.nodeLocked(h)
	e.count--
	if e.count > 0 {
		return e.count, nil
	}
	delete(s.nodes, h)
	s.release(h)
	return 0, &e.payload
}

// updateToken mutates a payload in place. fn must not call back into the
// store.
func (s *Store) updateToken(h handle.Handle, fn func(*TokenPayload)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.tokenLocked(h).payload)
}

func (s *Store) updateNode(h handle.Handle, fn func(*NodePayload)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.nodeLocked(h).payload)
}

func (s *Store) release(h handle.Handle) {
	if s.handles != nil && s.handles.Contains(h) {
		s.handles.Decrement(h)
	}
}

func (s *Store) tokenLocked(h handle.Handle) *tokenEntry {
	s.checkLocked()
	e, ok := s.tokens[h]
	if !ok {
		panic(fmt.Errorf("token %d: %w", h, ErrNotFound))
	}
	return e
}

func (s *Store) nodeLocked(h handle.Handle) *nodeEntry {
	s.checkLocked()
	e, ok := s.nodes[h]
	if !ok {
		panic(fmt.Errorf("node %d: %w", h, ErrNotFound))
	}
	return e
}

func (s *Store) checkLocked() {
	if !s.initialized {
		panic(ErrUninitialized)
	}
}

// Context bundles the handle allocator and the store that one compilation
// shares. Lexers, parsers, tokens and nodes all carry one explicitly.
type Context struct {
	handles *handle.Allocator
	store   *Store
}

// NewContext returns an initialized context.
func NewContext(opts ...handle.Option) *Context {
	handles := handle.NewAllocator(opts...)
	handles.Initialize()
	store := NewStore(handles)
	store.Initialize()
	return &Context{handles: handles, store: store}
}

func (c *Context) Handles() *handle.Allocator { return c.handles }
func (c *Context) Store() *Store              { return c.store }

// Close tears down the store and the allocator. Any entry still alive is
// reported as a leak.
func (c *Context) Close() {
	if c.store.IsInitialized() {
		c.store.Uninitialize()
	}
	if c.handles.IsInitialized() {
		c.handles.Uninitialize()
	}
}
