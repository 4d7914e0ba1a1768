package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/grindlemire/go-reactpug/internal/config"
	"github.com/grindlemire/go-reactpug/internal/log"
	"github.com/grindlemire/go-reactpug/pkg/reactpug"
)

// cliOptions holds the flags shared by every subcommand.
type cliOptions struct {
	verbose    bool
	logFile    string
	configPath string
	factory    string
	rootTag    string
	format     string
	globals    []string
	outExt     string
	stdout     bool
	locals     string
	paths      []string
}

// valueFlags take an argument, either as the next word or after '='.
var valueFlags = map[string]bool{
	"log":      true,
	"config":   true,
	"factory":  true,
	"root-tag": true,
	"format":   true,
	"global":   true,
	"out-ext":  true,
	"locals":   true,
}

// parseArgs parses flags and positional paths. Flags may use one or two
// dashes.
func parseArgs(args []string) (*cliOptions, error) {
	o := &cliOptions{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			o.paths = append(o.paths, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		var val string
		hasVal := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, val, hasVal = name[:eq], name[eq+1:], true
		}

		switch name {
		case "v", "verbose":
			o.verbose = true
			continue
		case "stdout":
			o.stdout = true
			continue
		}

		if !valueFlags[name] {
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
		if !hasVal {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s requires a value", arg)
			}
			i++
			val = args[i]
		}

		switch name {
		case "log":
			o.logFile = val
		case "config":
			o.configPath = val
		case "factory":
			o.factory = val
		case "root-tag":
			o.rootTag = val
		case "format":
			o.format = val
		case "global":
			o.globals = append(o.globals, val)
		case "out-ext":
			o.outExt = val
		case "locals":
			o.locals = val
		}
	}
	return o, nil
}

// setupLogging directs debug logging to the --log file, to stderr with -v,
// or to the file named by REACTPUG_DEBUG. The returned function closes any
// log file.
func (o *cliOptions) setupLogging() (func(), error) {
	var (
		c   io.Closer
		err error
	)
	switch {
	case o.logFile != "":
		c, err = log.OpenFile(o.logFile)
	case o.verbose:
		log.SetOutput(os.Stderr)
		return func() { log.SetOutput(nil) }, nil
	default:
		c, err = log.FromEnv(os.Getenv)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return func() {}, nil
	}
	return func() { c.Close() }, nil
}

// settings loads the project config and applies flag overrides.
func (o *cliOptions) settings() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		log.Debug("using config %s", cfg.Path)
	}
	if o.factory != "" {
		cfg.Factory = o.factory
	}
	if o.rootTag != "" {
		cfg.RootTag = o.rootTag
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	cfg.Globals = append(cfg.Globals, o.globals...)
	if o.outExt != "" {
		cfg.OutExt = o.outExt
	}
	if !strings.HasPrefix(cfg.OutExt, ".") {
		cfg.OutExt = "." + cfg.OutExt
	}
	return cfg, nil
}

// compileOptions converts settings into library options.
func compileOptions(cfg *config.Config, color bool) (reactpug.Options, error) {
	format, err := reactpug.ParseFormat(cfg.Format)
	if err != nil {
		return reactpug.Options{}, err
	}
	basedir, _ := os.Getwd()
	return reactpug.Options{
		Basedir:          basedir,
		Factory:          cfg.Factory,
		RootTag:          cfg.RootTag,
		Format:           format,
		Globals:          cfg.Globals,
		EscapeAttributes: cfg.EscapeAttributes,
		Color:            color,
	}, nil
}

// colorEnabled reports whether diagnostics written to w may use ANSI
// colors.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
