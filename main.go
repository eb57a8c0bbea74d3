package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/driver"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/interp"
	"github.com/pontaoski/pyco/lexer"
	"github.com/pontaoski/pyco/project"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/pyco", "main")

func setupLogging(level string) error {
	lvl, err := capnslog.ParseLevel(strings.ToUpper(level))
	if err != nil {
		return err
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, lvl >= capnslog.DEBUG))
	capnslog.SetGlobalLogLevel(lvl)
	return nil
}

// manifest loads the nearest pyco.yaml, if there is one.
func manifest() (project.Manifest, string, bool) {
	dir, ok := project.Find(".")
	if !ok {
		return project.Manifest{}, "", false
	}
	m, err := project.Load(dir)
	if err != nil {
		plog.Warningf("ignoring manifest: %v", err)
		return project.Manifest{}, "", false
	}
	return m, dir, true
}

// sourceFile is the file named on the command line, or the manifest's
// entry when none is.
func sourceFile(c *cli.Context) (string, error) {
	if file := c.Args().First(); file != "" {
		return file, nil
	}
	m, dir, ok := manifest()
	if !ok {
		return "", cli.Exit("no file given and no "+project.ManifestFile+" found", errors.ExitFailure)
	}
	return m.EntryPath(dir), nil
}

func readSource(c *cli.Context) (source, filename string, err error) {
	filename, err = sourceFile(c)
	if err != nil {
		return "", "", err
	}
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return "", "", cli.Exit(err.Error(), errors.ExitFailure)
	}
	return string(data), filename, nil
}

// options merges the manifest's limits with the command's flags. Flags win.
func options(c *cli.Context) interp.Options {
	opts := interp.Options{Stdout: c.App.Writer}
	if m, _, ok := manifest(); ok {
		opts.MaxSteps = m.MaxSteps
		opts.MaxDepth = m.MaxDepth
	}
	if c.IsSet("max-steps") {
		opts.MaxSteps = c.Int64("max-steps")
	}
	if c.IsSet("max-depth") {
		opts.MaxDepth = c.Int("max-depth")
	}
	return opts
}

func runContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if !c.IsSet("timeout") {
		if m, _, ok := manifest(); ok {
			timeout = m.Timeout
		}
	}
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

// fail turns a pipeline error into the matching exit status.
func fail(c *cli.Context, err error) error {
	if err == nil {
		return nil
	}
	if c.Bool("trace") {
		tracerr.PrintSourceColor(err)
	}
	return cli.Exit(err.Error(), errors.ExitCode(err))
}

var limitFlags = []cli.Flag{
	&cli.Int64Flag{
		Name:  "max-steps",
		Usage: "stop after executing this many statements (0 for no limit)",
	},
	&cli.IntFlag{
		Name:  "max-depth",
		Usage: "maximum call depth",
		Value: interp.DefaultMaxDepth,
	},
	&cli.DurationFlag{
		Name:  "timeout",
		Usage: "cancel evaluation after this long",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pyco",
		Usage: "a small statically typed language",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG or TRACE",
				Value: "WARNING",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print a stack trace with source for failures",
			},
		},
		Before: func(c *cli.Context) error {
			level := c.String("log-level")
			if !c.IsSet("log-level") {
				if m, _, ok := manifest(); ok && m.LogLevel != "" {
					level = m.LogLevel
				}
			}
			if err := setupLogging(level); err != nil {
				return cli.Exit(err.Error(), errors.ExitFailure)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "create a project in the current directory",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no package name provided", errors.ExitFailure)
					}
					m := project.New(name)
					if err := project.Save(".", m); err != nil {
						return fail(c, err)
					}
					if _, err := os.Stat(m.Entry); os.IsNotExist(err) {
						if err := ioutil.WriteFile(m.Entry, []byte("print(42)\n"), 0644); err != nil {
							return fail(c, err)
						}
					}
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "check and run a file",
				ArgsUsage: "[file]",
				Flags:     limitFlags,
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					ctx, cancel := runContext(c)
					defer cancel()
					return fail(c, driver.Run(ctx, source, filename, options(c)))
				},
			},
			{
				Name:      "check",
				Usage:     "lex, parse and type check a file without running it",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					_, err = driver.Compile(source, filename)
					return fail(c, err)
				},
			},
			{
				Name:      "tokens",
				Usage:     "print the tokens of a file",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					toks, err := lexer.Tokenize(source, filename)
					for _, tok := range toks {
						fmt.Fprintln(c.App.Writer, tok)
					}
					return fail(c, err)
				},
			},
			{
				Name:      "ast",
				Usage:     "dump the syntax tree of a file",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					prog, err := driver.Parse(source, filename)
					if err != nil {
						return fail(c, err)
					}
					fmt.Fprintln(c.App.Writer, repr.String(prog, repr.Indent("  ")))
					return nil
				},
			},
			{
				Name:      "fmt",
				Usage:     "print a file in canonical form",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "write the result back to the file",
					},
				},
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					prog, err := driver.Parse(source, filename)
					if err != nil {
						return fail(c, err)
					}
					out := ast.Format(prog)
					if !c.Bool("write") {
						fmt.Fprint(c.App.Writer, out)
						return nil
					}
					if err := ioutil.WriteFile(filename, []byte(out), 0644); err != nil {
						return fail(c, err)
					}
					return nil
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "print the signatures of a file's top-level functions as JSON",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					source, filename, err := readSource(c)
					if err != nil {
						return err
					}
					prog, err := driver.Compile(source, filename)
					if err != nil {
						return fail(c, err)
					}
					data, err := prog.TypeInfo().Marshal()
					if err != nil {
						return fail(c, err)
					}
					fmt.Fprintln(c.App.Writer, string(data))
					return nil
				},
			},
			{
				Name:      "repl",
				Usage:     "start an interactive session",
				ArgsUsage: "[file to load]",
				Flags:     limitFlags,
				Action:    repl,
			},
		},
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pyco_history")
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitFailure)
	}
}
