// Package driver strings the pipeline stages together: lexing, parsing,
// checking and evaluation.
package driver

import (
	"context"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/interp"
	"github.com/pontaoski/pyco/parser"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/pyco", "driver")

// Program is a source file that made it through every static phase.
type Program struct {
	Filename string
	File     *ast.Program
	Info     *checker.Info
}

func Parse(source, filename string) (*ast.Program, error) {
	plog.Debugf("parsing %s", filename)
	return parser.ParseSource(source, filename)
}

// Compile lexes, parses and checks source. No part of a program that fails
// here is ever evaluated.
func Compile(source, filename string) (*Program, error) {
	file, err := Parse(source, filename)
	if err != nil {
		return nil, err
	}

	plog.Debugf("checking %s", filename)
	info, err := checker.Check(file)
	if err != nil {
		return nil, err
	}

	return &Program{Filename: filename, File: file, Info: info}, nil
}

// Run evaluates a compiled program in a fresh environment.
func (p *Program) Run(ctx context.Context, opts interp.Options) error {
	in := interp.New(p.Info, opts)
	err := in.Run(ctx, p.File)
	plog.Infof("%s ran %d statements", p.Filename, in.Steps())
	return err
}

// Run compiles and evaluates source.
func Run(ctx context.Context, source, filename string, opts interp.Options) error {
	prog, err := Compile(source, filename)
	if err != nil {
		return err
	}
	return prog.Run(ctx, opts)
}
