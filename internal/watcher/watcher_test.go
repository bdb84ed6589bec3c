package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.paths...)
	sort.Strings(out)
	return out
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func startWatcher(t *testing.T, cfg Config, rec *recorder) *Watcher {
	t.Helper()
	if cfg.Debounce == 0 {
		cfg.Debounce = 50 * time.Millisecond
	}
	w := New(cfg, rec.add)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, Config{Roots: []string{dir}, Extensions: []string{".txt"}, Recursive: true}, rec)

	path := filepath.Join(dir, "f.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.snapshot()) >= 1 }) {
		t.Fatal("expected a report for f.txt")
	}
	time.Sleep(150 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 || filepath.Base(got[0]) != "f.txt" {
		t.Errorf("repeated writes should be reported once, got %v", got)
	}
}

func TestWatcher_NewDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, Config{Roots: []string{dir}, Extensions: []string{"txt", ".md"}, Recursive: true}, rec)

	nested := filepath.Join(dir, "level1", "level2")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"deep.txt": "deep", "notes.md": "md", "ignore.xyz": "no"} {
		if err := os.WriteFile(filepath.Join(nested, name), []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		var txt, md bool
		for _, p := range rec.snapshot() {
			txt = txt || strings.HasSuffix(p, "deep.txt")
			md = md || strings.HasSuffix(p, "notes.md")
		}
		return txt && md
	})
	if !ok {
		t.Fatalf("expected deep.txt and notes.md, got %v", rec.snapshot())
	}
	for _, p := range rec.snapshot() {
		if strings.HasSuffix(p, "ignore.xyz") {
			t.Error("ignore.xyz should not be reported")
		}
	}
}

func TestWatcher_SyncExisting(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.xyz"), filepath.Join(sub, "c.txt")} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	flat := &recorder{}
	w := startWatcher(t, Config{Roots: []string{dir}, Extensions: []string{".txt"}}, flat)
	w.SyncExisting()
	if got := flat.snapshot(); len(got) != 1 || filepath.Base(got[0]) != "a.txt" {
		t.Errorf("non-recursive sync = %v", got)
	}

	deep := &recorder{}
	w = startWatcher(t, Config{Roots: []string{dir}, Extensions: []string{".txt"}, Recursive: true}, deep)
	w.SyncExisting()
	if got := deep.snapshot(); len(got) != 2 {
		t.Errorf("recursive sync = %v", got)
	}
}

func TestWatcher_StartErrors(t *testing.T) {
	base := t.TempDir()
	missing := New(Config{Roots: []string{filepath.Join(base, "missing")}}, func(string) {})
	if err := missing.Start(context.Background()); err == nil {
		t.Error("expected error for a missing root")
	}

	file := filepath.Join(base, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	notDir := New(Config{Roots: []string{file}}, func(string) {})
	if err := notDir.Start(context.Background()); err == nil {
		t.Error("expected error for a file root")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	rec := &recorder{}
	w := startWatcher(t, Config{Roots: []string{t.TempDir()}}, rec)
	w.Stop()
	w.Stop()
	if dirs := w.Directories(); len(dirs) != 1 || !filepath.IsAbs(dirs[0]) {
		t.Errorf("Directories() = %v", dirs)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{"txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", []string{".txt"}, false},
		{"/a/b", nil, true},
	}
	for _, tt := range tests {
		if got := MatchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("MatchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}
