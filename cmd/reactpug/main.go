// Package main provides the CLI tool for compiling pug templates into React
// element builders.
//
// Usage:
//
//	reactpug generate [path...]    Compile .pug files to .js files
//	reactpug check [path...]       Compile .pug files without writing output
//	reactpug render file.pug       Render a template to a JSON element tree
//	reactpug watch [path...]       Recompile templates when they change
//	reactpug help                  Show help
//
// Examples:
//
//	reactpug generate ./...          Recursively compile all .pug files
//	reactpug generate ./views        Compile a specific directory
//	reactpug check header.pug        Check a template without writing output
//	reactpug render --locals l.yaml card.pug
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

const usage = `reactpug - compile pug templates into React element builders

Usage:
  reactpug <command> [options] [path...]

Commands:
  generate    Compile .pug and .jade files to JavaScript
  check       Compile templates without writing output
  render      Render one template with locals and print the element tree as JSON
  watch       Recompile templates when they change
  version     Print version information
  help        Show this help message

Options:
  -v                  Verbose output, with debug logging to stderr
  --log <file>        Write debug logging to a file
  --config <file>     Use a specific reactpug.yaml
  --factory <expr>    Element factory (default React.createElement)
  --root-tag <name>   Element wrapping several top-level nodes (default div)
  --format <name>     Output format: body or commonjs (default body)
  --global <name>     Identifier resolved outside locals (repeatable)
  --out-ext <ext>     Extension of generated files (default .js)
  --stdout            Print generated code instead of writing files
  --locals <file>     YAML or JSON locals for render

Examples:
  reactpug generate ./...                  Recursively process all templates
  reactpug generate ./views                Process files in a directory
  reactpug generate --format commonjs a.pug
  reactpug check ./...                     Check templates without writing
  reactpug render --locals user.yaml card.pug
  reactpug watch -v ./...                  Recompile on change with logging

Project settings are read from the nearest reactpug.yaml.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate":
		if err := runGenerate(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := runRender(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("reactpug version %s\n", version)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}
