package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/grindlemire/go-reactpug/internal/config"
	"github.com/grindlemire/go-reactpug/internal/log"
	"github.com/grindlemire/go-reactpug/pkg/reactpug"
)

// templateExts are the extensions recognized as templates.
var templateExts = []string{".pug", ".jade"}

// runGenerate implements the generate subcommand.
// It compiles templates and writes the JavaScript next to each source.
func runGenerate(args []string) error {
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
	if len(files) == 0 {
		return fmt.Errorf("no .pug files found")
	}

	if o.verbose {
		fmt.Printf("Found %d template(s)\n", len(files))
	}

	g := &generator{opts: opts, outExt: cfg.OutExt, verbose: o.verbose, stdout: o.stdout}
	if err := g.run(files, os.Stdout, os.Stderr); err != nil {
		return err
	}

	if o.verbose && !o.stdout {
		fmt.Printf("Successfully generated %d file(s)\n", len(files))
	}
	return nil
}

// generator compiles a set of templates concurrently.
type generator struct {
	opts    reactpug.Options
	outExt  string
	verbose bool
	// stdout prints each result instead of writing it next to the source.
	stdout bool
	// dryRun compiles without writing anything.
	dryRun bool
}

// run compiles files with at most GOMAXPROCS workers. Per-file errors are
// reported to errw and counted; output printed with stdout is written in
// input order.
func (g *generator) run(files []string, out, errw io.Writer) error {
	results := make([]string, len(files))
	var (
		mu     sync.Mutex
		failed int
	)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, inputPath := range files {
		eg.Go(func() error {
			code, err := g.compile(inputPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(errw, "%v\n", err)
				failed++
				return nil
			}
			results[i] = code
			return nil
		})
	}
	_ = eg.Wait()

	if g.stdout {
		for i, code := range results {
			if code == "" {
				continue
			}
			fmt.Fprintf(out, "// %s\n%s", files[i], code)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) had errors", failed)
	}
	return nil
}

// compile compiles one template and, unless printing or dry-running,
// writes the result. It returns the compiled code.
func (g *generator) compile(inputPath string) (string, error) {
	code, err := reactpug.CompileFile(inputPath, g.opts)
	if err != nil {
		return "", err
	}
	if g.stdout || g.dryRun {
		return code, nil
	}

	outputPath := outputFileName(inputPath, g.outExt)
	if g.verbose {
		fmt.Printf("Processing %s -> %s\n", inputPath, outputPath)
	}
	if err := os.WriteFile(outputPath, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("%s: writing file: %w", inputPath, err)
	}
	log.Compile("wrote %s (%d bytes)", outputPath, len(code))
	return code, nil
}

// collectTemplates finds all templates from the given paths.
// Supports:
//   - Direct file paths: "header.pug"
//   - Directory paths: "./views"
//   - Recursive pattern: "./..."
//
// Directories named in cfg.Exclude are skipped while walking.
func collectTemplates(paths []string, cfg *config.Config) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, path := range paths {
		if strings.HasSuffix(path, "/...") || path == "..." {
			root := strings.TrimSuffix(strings.TrimSuffix(path, "..."), "/")
			if root == "" {
				root = "."
			}

			err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if p != root && cfg.Excluded(d.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if isTemplate(p) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", root, err)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && isTemplate(entry.Name()) {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		} else if isTemplate(path) {
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isTemplate(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range templateExts {
		if ext == e {
			return true
		}
	}
	return false
}

// outputFileName replaces the template extension with ext.
// Examples:
//
//	header.pug   -> header.js
//	views/a.jade -> views/a.js
func outputFileName(inputPath, ext string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
}
