package watcher

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var termName = regexp.MustCompile(`^\d{4}$`)

func isTerm(name string) bool { return termName.MatchString(name) }

type recorder struct {
	mu      sync.Mutex
	created []string
	changed []string
	removed []string
}

func (r *recorder) handlers() Handlers {
	add := func(dst *[]string) func(string) {
		return func(p string) {
			r.mu.Lock()
			*dst = append(*dst, filepath.Base(p))
			r.mu.Unlock()
		}
	}
	return Handlers{OnCreate: add(&r.created), OnChange: add(&r.changed), OnRemove: add(&r.removed)}
}

func (r *recorder) snapshot() (created, changed, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created = append(created, r.created...)
	changed = append(changed, r.changed...)
	removed = append(removed, r.removed...)
	sort.Strings(created)
	return created, changed, removed
}

func startWatcher(t *testing.T, root string, rec *recorder) *Watcher {
	t.Helper()
	w := NewWatcher(root, []string{".pdf", ".txt"}, rec.handlers(),
		WithDirFilter(isTerm), WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestWatcher_DirectoriesOnlyTermDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"2011", "2012", "misc", ".cache"} {
		if err := mkdirAll(filepath.Join(root, d)); err != nil {
			t.Fatal(err)
		}
	}
	w := startWatcher(t, root, &recorder{})

	dirs := w.Directories()
	want := []string{filepath.Join(root, "2011"), filepath.Join(root, "2012")}
	if len(dirs) != len(want) {
		t.Fatalf("Directories() = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("Directories()[%d] = %s, want %s", i, dirs[i], want[i])
		}
	}
}

func TestWatcher_NewFileIsCreated(t *testing.T) {
	root := t.TempDir()
	if err := mkdirAll(filepath.Join(root, "2011")); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, root, rec)

	if err := writeFile(filepath.Join(root, "2011", "10-1.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(root, "2011", "notes.md"), "skip"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { c, _, _ := rec.snapshot(); return len(c) > 0 })
	time.Sleep(200 * time.Millisecond)

	created, changed, _ := rec.snapshot()
	if len(created) != 1 || created[0] != "10-1.txt" {
		t.Errorf("created = %v, want [10-1.txt]", created)
	}
	if len(changed) != 0 {
		t.Errorf("create followed by write should not be reported as a change, got %v", changed)
	}
}

func TestWatcher_RewriteIsChangedAndRemoveIsRemoved(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "2011", "10-1.txt")
	if err := mkdirAll(filepath.Dir(path)); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(path, "first"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, root, rec)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(" second"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	waitFor(t, func() bool { _, c, _ := rec.snapshot(); return len(c) > 0 })

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, _, r := rec.snapshot(); return len(r) > 0 })

	_, changed, removed := rec.snapshot()
	if len(changed) != 1 || changed[0] != "10-1.txt" {
		t.Errorf("changed = %v", changed)
	}
	if len(removed) != 1 || removed[0] != "10-1.txt" {
		t.Errorf("removed = %v", removed)
	}
}

func TestWatcher_NewTermDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, root, rec)

	term := filepath.Join(root, "2013")
	if err := mkdirAll(term); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(term, "12-5.pdf"), "%PDF"); err != nil {
		t.Fatal(err)
	}
	if err := mkdirAll(filepath.Join(root, "drafts")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { c, _, _ := rec.snapshot(); return len(c) > 0 })

	created, _, _ := rec.snapshot()
	if len(created) != 1 || created[0] != "12-5.pdf" {
		t.Errorf("created = %v, want [12-5.pdf]", created)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != term {
		t.Errorf("Directories() = %v, want [%s]", dirs, term)
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	root := t.TempDir()
	for path, body := range map[string]string{
		"2011/a.txt":       "a",
		"2011/b.pdf":       "b",
		"2011/ignore.xyz":  "x",
		"2011/.hidden.txt": "h",
		"misc/c.txt":       "c",
		"top.txt":          "t",
	} {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := mkdirAll(filepath.Dir(full)); err != nil {
			t.Fatal(err)
		}
		if err := writeFile(full, body); err != nil {
			t.Fatal(err)
		}
	}
	rec := &recorder{}
	w := startWatcher(t, root, rec)
	w.SyncExistingFiles()

	created, _, _ := rec.snapshot()
	if strings.Join(created, ",") != "a.txt,b.pdf" {
		t.Errorf("created = %v, want [a.txt b.pdf]", created)
	}
}

func TestWatcher_Start_createsMissingRootDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")

	w := NewWatcher(root, nil, Handlers{})
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.PDF", []string{".pdf"}, true},
		{"/a/b.md", []string{".txt", ".pdf"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		got := matchExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestWatcher_handlersDoNotOverlap(t *testing.T) {
	root := t.TempDir()
	term := filepath.Join(root, "2011")
	if err := mkdirAll(term); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"10-1.txt", "10-2.txt", "10-3.txt"} {
		if err := os.WriteFile(filepath.Join(term, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var inFlight, maxInFlight, calls int32
	handler := func(string) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&calls, 1)
	}
	w := NewWatcher(root, []string{".txt"}, Handlers{OnCreate: handler, OnChange: handler},
		WithDirFilter(isTerm), WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, name := range []string{"11-1.txt", "11-2.txt", "11-3.txt"} {
		if err := os.WriteFile(filepath.Join(term, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	w.SyncExistingFiles()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 9 })

	if got := atomic.LoadInt32(&calls); got < 9 {
		t.Errorf("handler calls = %d, want at least 9", got)
	}
	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("max concurrent handler calls = %d, want 1", got)
	}
}
