// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/models"
)

// MP4Header is the start of an ISO base media file, enough for content sniffing.
const MP4Header = "\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"

// ManualScheduler is a test double for the session scheduler. Tasks only run when [ManualScheduler.Fire] is called.
type ManualScheduler struct {
	mu     sync.Mutex
	tasks  map[int]*manualTask
	nextID int
}

type manualTask struct {
	interval time.Duration
	fn       func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]*manualTask)}
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.tasks[id] = &manualTask{interval: interval, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
	}
}

// Fire runs every active task once.
func (s *ManualScheduler) Fire() {
	for _, fn := range s.snapshot() {
		fn()
	}
}

// FireN calls [ManualScheduler.Fire] n times.
func (s *ManualScheduler) FireN(n int) {
	for range n {
		s.Fire()
	}
}

// Active returns the number of tasks that have not been cancelled.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Intervals returns the interval of every active task.
func (s *ManualScheduler) Intervals() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.interval)
	}
	return out
}

// Stale captures the current tasks so a test can run them after they are cancelled.
func (s *ManualScheduler) Stale() []func() {
	return s.snapshot()
}

func (s *ManualScheduler) snapshot() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]func(), 0, len(s.tasks))
	for _, t := range s.tasks {
		fns = append(fns, t.fn)
	}
	return fns
}

// FakePreviews is a test double for [media.Previews] that counts acquisitions and releases.
type FakePreviews struct {
	mu       sync.Mutex
	next     int
	locators []*FakeLocator
	Err      error // returned by Acquire when set
}

func NewFakePreviews() *FakePreviews { return &FakePreviews{} }

func (p *FakePreviews) Acquire(upload media.Upload) (media.Locator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}

	p.next++
	loc := &FakeLocator{token: fmt.Sprintf("preview-%d", p.next), media: upload.Media()}
	p.locators = append(p.locators, loc)
	return loc, nil
}

// Locators returns every locator acquired so far, in order.
func (p *FakePreviews) Locators() []*FakeLocator {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*FakeLocator(nil), p.locators...)
}

// Live returns the number of acquired locators that have not been released.
func (p *FakePreviews) Live() int {
	live := 0
	for _, loc := range p.Locators() {
		if loc.Releases() == 0 {
			live++
		}
	}
	return live
}

// FakeLocator records how many times it was released.
type FakeLocator struct {
	token string
	media models.Media

	mu       sync.Mutex
	releases int
}

func (l *FakeLocator) Token() string       { return l.token }
func (l *FakeLocator) URL() string         { return "blob:" + l.token }
func (l *FakeLocator) Media() models.Media { return l.media }

func (l *FakeLocator) Release() error {
	l.mu.Lock()
	l.releases++
	l.mu.Unlock()
	return nil
}

func (l *FakeLocator) Releases() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases
}

// Collector records values delivered from other goroutines.
type Collector[T any] struct {
	mu    sync.Mutex
	items []T
}

func (c *Collector[T]) Add(v T) {
	c.mu.Lock()
	c.items = append(c.items, v)
	c.mu.Unlock()
}

func (c *Collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Collector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// SyncBuffer is a [bytes.Buffer] safe for concurrent writers, such as loggers shared by several sessions.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// FReader always fails to read, for exercising upload error paths
type FReader struct{}

func (f *FReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File still exists: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
