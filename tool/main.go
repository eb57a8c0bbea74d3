// Command adtgen renders sealed Go interfaces from an ADT description.
//
//	type Expr = | Call | Identifier ;
//
// becomes an Expr interface embedding Node with an unexported exprNode
// marker, plus marker and Span methods on every listed pointer type.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

const defaultTypesPath = "github.com/pontaoski/pyco/types"

type Unions struct {
	Declarations []*Union `@@*`
}

type Union struct {
	Name  string   `"type" @Ident "="`
	Cases []string `("|" @Ident)+ ";"`
}

func markerName(union string) string {
	return strings.ToLower(union[:1]) + union[1:] + "Node"
}

func GenerateUnions(pkgname, typesPath string, u *Unions) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by adtgen from ast.adt. DO NOT EDIT.")

	spanned := map[string]bool{}
	for _, decl := range u.Declarations {
		marker := markerName(decl.Name)

		f.Type().Id(decl.Name).Interface(
			Id("Node"),
			Id(marker).Params(),
		)

		for _, it := range decl.Cases {
			f.Func().Params(Op("*").Id(it)).Id(marker).Params().Block()

			if spanned[it] {
				continue
			}
			spanned[it] = true
			f.Func().Params(Id("n").Op("*").Id(it)).Id("Span").Params().Qual(typesPath, "Span").Block(
				Return(Id("n").Dot("Pos")),
			)
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: adtgen <in.adt> <out.go> <package> [types import path]")
		os.Exit(2)
	}

	parser := participle.MustBuild(&Unions{})

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]
	typesPath := defaultTypesPath
	if len(os.Args) > 4 {
		typesPath = os.Args[4]
	}

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls := Unions{}
	err = parser.ParseBytes(inData, &decls)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateUnions(pkgname, typesPath, &decls)), 0644)
	if err != nil {
		panic(err)
	}
}
