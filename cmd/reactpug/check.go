package main

import (
	"fmt"
	"io"
	"os"
)

// runCheck implements the check subcommand.
// It compiles templates without writing output. Useful for CI and editor
// integration.
func runCheck(args []string) error {
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
		fmt.Printf("Checking %d template(s)\n", len(files))
	}

	g := &generator{opts: opts, dryRun: true}
	if err := g.run(files, io.Discard, os.Stderr); err != nil {
		return err
	}

	if o.verbose {
		fmt.Printf("All %d file(s) passed checks\n", len(files))
	}
	return nil
}
