// Package cli implements Ralix's command-line entrypoint: run, ast and
// repl subcommands over the pkg/ralix library surface.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/ralix-lang/ralix/internal/config"
	"github.com/ralix-lang/ralix/pkg/ralix"
)

// Run is the process entrypoint, dispatching argv[1:] to a subcommand.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 2
	}

	switch args[0] {
	case "run":
		return runCommand(args[1:], stdout, stderr)
	case "ast":
		return astCommand(args[1:], stdout, stderr)
	case "repl":
		return replCommand(stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprintln(stdout, usage())
		return 0
	default:
		fmt.Fprintln(stderr, usage())
		return 2
	}
}

func usage() string {
	return "usage: ralix <run|ast|repl> [-e expr | file]"
}

// useColor decides whether diagnostics should be colorized. A
// `.ralixrc.yaml` `color` setting overrides the isatty auto-detection;
// otherwise color follows whether stdout is a terminal.
func useColor(settings config.Settings) bool {
	if settings.Color != nil {
		return *settings.Color
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// sourceAndPath extracts the source text either from `-e expr` or from
// a file path argument.
func sourceAndPath(args []string) (source string, path string, err error) {
	if len(args) >= 2 && args[0] == "-e" {
		return strings.Join(args[1:], " "), "<eval>", nil
	}
	if len(args) == 1 {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", readErr
		}
		return string(data), args[0], nil
	}
	return "", "", fmt.Errorf("expected a file path or -e <expr>")
}

func runCommand(args []string, stdout, stderr io.Writer) int {
	source, _, err := sourceAndPath(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	settings, _ := config.Load(".ralixrc.yaml")

	result, err := ralix.Execute(source)
	if err != nil {
		fmt.Fprint(stderr, ralix.Diagnose(source, err, useColor(settings)))
		if settings.ShowTraces {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	if result != nil {
		fmt.Fprintln(stdout, result.Inspect())
	}
	return 0
}

func astCommand(args []string, stdout, stderr io.Writer) int {
	asYAML := false
	filtered := args[:0:0]
	for _, a := range args {
		if a == "--yaml" {
			asYAML = true
			continue
		}
		filtered = append(filtered, a)
	}

	source, _, err := sourceAndPath(filtered)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	settings, _ := config.Load(".ralixrc.yaml")

	program, err := ralix.Parse(source)
	if err != nil {
		fmt.Fprint(stderr, ralix.Diagnose(source, err, useColor(settings)))
		if settings.ShowTraces {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	if asYAML {
		out, marshalErr := yaml.Marshal(program)
		if marshalErr != nil {
			fmt.Fprintln(stderr, marshalErr)
			return 1
		}
		stdout.Write(out)
		return 0
	}

	out, err := json.MarshalIndent(program, "", "  ")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func replCommand(stdout, stderr io.Writer) int {
	sess := ralix.NewSession()
	scanner := bufio.NewScanner(os.Stdin)
	settings, _ := config.Load(".ralixrc.yaml")
	color := useColor(settings)

	prompt := "ralix> "
	if color {
		prompt = "\x1b[36mralix>\x1b[0m "
	}

	for {
		fmt.Fprint(stdout, prompt)
		if !scanner.Scan() {
			return 0
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		result, err := sess.Run(line)
		if err != nil {
			fmt.Fprint(stderr, ralix.Diagnose(line, err, color))
			if settings.ShowTraces {
				fmt.Fprintln(stderr, err)
			}
			continue
		}
		if result != nil {
			fmt.Fprintln(stdout, result.Inspect())
		}
	}
}
