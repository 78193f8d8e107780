// Package testutil provides in-memory fakes for the orchestrator's external
// collaborators, shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/vk/buildgridgo/internal/jobid"
	"github.com/vk/buildgridgo/internal/matrix"
)

// FakeRunner is a scripted dispatch.Runner. Outcomes are keyed by job
// identity; unscripted jobs succeed and return their identity as the build
// handle.
type FakeRunner struct {
	Order []string
	Fail  map[string]string // identity → failure reason

	mu    sync.Mutex
	calls []string
}

// RunBuild implements dispatch.Runner.
func (r *FakeRunner) RunBuild(ctx context.Context, cell matrix.Cell) (string, error) {
	identity := jobid.Resolve(r.Order, cell)

	r.mu.Lock()
	r.calls = append(r.calls, identity)
	r.mu.Unlock()

	if reason, ok := r.Fail[identity]; ok {
		return "", fmt.Errorf("%s", reason)
	}
	return identity, nil
}

// Calls returns the identities the runner was invoked with, in call order.
func (r *FakeRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// FakeImages is an in-memory extract.ImageSource: a map of image handle to
// the files inside it.
type FakeImages struct {
	Files map[string]map[string][]byte // handle → path → content

	mu    sync.Mutex
	saves []string
}

// CopyOut implements extract.ImageSource.
func (f *FakeImages) CopyOut(ctx context.Context, handle, src, dst string) error {
	image, ok := f.Files[handle]
	if !ok {
		return fmt.Errorf("unknown image %q", handle)
	}
	content, ok := image[src]
	if !ok {
		return fmt.Errorf("path %q does not exist inside image %q", src, handle)
	}
	return os.WriteFile(dst, content, 0o644)
}

// Save implements extract.ImageSource by writing a marker archive.
func (f *FakeImages) Save(ctx context.Context, handle, dst string) error {
	if _, ok := f.Files[handle]; !ok {
		return fmt.Errorf("unknown image %q", handle)
	}
	f.mu.Lock()
	f.saves = append(f.saves, handle)
	f.mu.Unlock()
	return os.WriteFile(dst, []byte("image-archive:"+handle), 0o644)
}

// Saves returns the handles Save was called with.
func (f *FakeImages) Saves() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saves...)
}

// MemStore is an in-memory publish.Store recording the content of every
// published artifact under "qualifier/name".
type MemStore struct {
	Err error // returned by Put when set

	mu      sync.Mutex
	objects map[string][]byte
}

// Put implements publish.Store.
func (s *MemStore) Put(ctx context.Context, qualifier, name, path string) error {
	if s.Err != nil {
		return s.Err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[qualifier+"/"+name] = content
	return nil
}

// Object returns the stored content for "qualifier/name".
func (s *MemStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[key]
	return content, ok
}

// Len returns the number of stored objects.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// MemPages is an in-memory publish.PagesStore counting overwrites per name.
type MemPages struct {
	Err error // returned by Publish when set

	mu       sync.Mutex
	objects  map[string][]byte
	publishs map[string]int
}

// Publish implements publish.PagesStore.
func (p *MemPages) Publish(ctx context.Context, name, path string) error {
	if p.Err != nil {
		return p.Err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.objects == nil {
		p.objects = make(map[string][]byte)
		p.publishs = make(map[string]int)
	}
	p.objects[name] = content
	p.publishs[name]++
	return nil
}

// Object returns the current site content for name.
func (p *MemPages) Object(name string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	content, ok := p.objects[name]
	return content, ok
}

// Publishes returns how many times name was published.
func (p *MemPages) Publishes(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.publishs[name]
}

// Len returns the number of distinct site artifacts.
func (p *MemPages) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}
