package driver

import (
	"encoding/json"

	"github.com/pontaoski/pyco/ast"
)

// TypeInfo describes the top-level functions of a program.
type TypeInfo struct {
	Functions map[string]string `json:"functions"`
}

func (p *Program) TypeInfo() TypeInfo {
	t := TypeInfo{Functions: map[string]string{}}
	for _, stmt := range p.File.Stmts {
		fn, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if sig, ok := p.Info.Funcs[fn]; ok {
			t.Functions[fn.Name.Name] = sig.String()
		}
	}
	return t
}

func (t TypeInfo) Marshal() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

func UnmarshalTypeInfo(data []byte) (t TypeInfo, err error) {
	err = json.Unmarshal(data, &t)
	return
}
