package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/grindlemire/go-reactpug/internal/config"
	"github.com/grindlemire/go-reactpug/internal/log"
)

// debounce is how long a template must be quiet before it is recompiled.
const debounce = 100 * time.Millisecond

// runWatch implements the watch subcommand.
// It generates every template once and then recompiles templates as they
// are written.
func runWatch(args []string) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	closeLog, err := o.setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := o.settings()
	if err != nil {
		return err
	}
	opts, err := compileOptions(cfg, colorEnabled(os.Stderr))
	if err != nil {
		return err
	}

	files, err := collectTemplates(o.paths, cfg)
	if err != nil {
		return err
	}
	g := &generator{opts: opts, outExt: cfg.OutExt, verbose: o.verbose}
	if len(files) > 0 {
		if err := g.run(files, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := newWatcher(g, cfg, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range watchRoots(o.paths) {
		if err := w.addRecursive(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	fmt.Printf("Watching for changes (Ctrl+C to stop)\n")
	w.loop(ctx)
	return nil
}

// watchRoots returns the directories to watch for the given path
// arguments.
func watchRoots(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	seen := make(map[string]bool)
	var roots []string
	for _, p := range paths {
		root := strings.TrimSuffix(strings.TrimSuffix(p, "..."), "/")
		if root == "" {
			root = "."
		}
		if isTemplate(root) {
			root = filepath.Dir(root)
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}

// watcher recompiles templates on change.
type watcher struct {
	fs      *fsnotify.Watcher
	gen     *generator
	cfg     *config.Config
	stdout  io.Writer
	stderr  io.Writer
	compile func(path string) error

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func newWatcher(g *generator, cfg *config.Config, stdout, stderr io.Writer) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:      fsw,
		gen:     g,
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		pending: make(map[string]*time.Timer),
	}
	w.compile = w.recompile
	return w, nil
}

// Close stops the underlying watcher and any pending recompiles.
func (w *watcher) Close() error {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// addRecursive watches root and its subdirectories, skipping excluded and
// hidden directories.
func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (w.cfg.Excluded(d.Name()) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		log.Watch("watching %s", p)
		return w.fs.Add(p)
	})
}

func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.stderr, "watch error: %v\n", err)
			log.Error("watcher error: %v", err)
		}
	}
}

// handle reacts to one file system event. New directories are watched;
// template writes are debounced per file.
func (w *watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				log.Error("failed to watch %s: %v", event.Name, err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !isTemplate(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule recompiles path once it has been quiet for the debounce period.
func (w *watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(debounce)
		return
	}
	log.Watch("change detected: %s", path)
	w.pending[path] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if err := w.compile(path); err != nil {
			fmt.Fprintf(w.stderr, "%v\n", err)
		}
	})
}

func (w *watcher) recompile(path string) error {
	start := time.Now()
	if _, err := w.gen.compile(path); err != nil {
		return err
	}
	fmt.Fprintf(w.stdout, "compiled %s in %s\n", path, time.Since(start).Round(time.Millisecond))
	return nil
}
