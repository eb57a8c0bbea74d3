package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/pontaoski/pyco/driver"
	"github.com/urfave/cli/v2"
)

const (
	promptMain = "pyco> "
	promptCont = "..... "
)

const replHelp = `:help          show this message
:quit          leave the session
:reset         forget every declaration
:load <file>   run a file in this session`

type shell struct {
	session *driver.Session
	out     io.Writer
	errOut  io.Writer
	newCtx  func() (context.Context, context.CancelFunc)
}

// handle runs one chunk of input and reports whether the session should end.
func (sh *shell) handle(code string) bool {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false
	}

	if strings.HasPrefix(trimmed, ":") {
		fields := strings.Fields(trimmed)
		switch strings.ToLower(fields[0]) {
		case ":quit", ":q":
			return true
		case ":help":
			fmt.Fprintln(sh.out, replHelp)
		case ":reset":
			sh.session.Reset()
		case ":load":
			if len(fields) != 2 {
				fmt.Fprintln(sh.errOut, "usage: :load <file>")
				return false
			}
			ctx, cancel := sh.newCtx()
			defer cancel()
			if err := sh.session.Load(ctx, fields[1]); err != nil {
				fmt.Fprintln(sh.errOut, err)
			}
		default:
			fmt.Fprintf(sh.errOut, "unknown command %s, try :help\n", fields[0])
		}
		return false
	}

	ctx, cancel := sh.newCtx()
	defer cancel()
	if err := sh.session.Eval(ctx, code); err != nil {
		fmt.Fprintln(sh.errOut, err)
	}
	return false
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readChunk keeps prompting until the collected lines parse, or fail to
// parse for a reason other than running out of input. It reports false
// when the session should end.
func readChunk(ln prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return "", false
		}
		if err != nil {
			plog.Errorf("reading input: %v", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := driver.Parse(src, "<repl>"); driver.Incomplete(err) {
			continue
		}
		return src, true
	}
}

func repl(c *cli.Context) error {
	sh := &shell{
		session: driver.NewSession(options(c)),
		out:     c.App.Writer,
		errOut:  c.App.ErrWriter,
		newCtx: func() (context.Context, context.CancelFunc) {
			return runContext(c)
		},
	}
	if sh.errOut == nil {
		sh.errOut = os.Stderr
	}
	if file := c.Args().First(); file != "" {
		sh.handle(":load " + file)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintln(sh.out, "pyco repl, :help for commands")
	for {
		code, ok := readChunk(ln)
		if !ok {
			fmt.Fprintln(sh.out)
			return nil
		}
		// Newlines end statements, so chunks go into history line by line.
		for _, line := range strings.Split(code, "\n") {
			if strings.TrimSpace(line) != "" {
				ln.AppendHistory(line)
			}
		}
		if sh.handle(code) {
			return nil
		}
	}
}
