package checker

import "github.com/pontaoski/pyco/ast"

// terminates reports whether every path through stmts executes a return.
// A for loop never counts: each(0) runs its body zero times.
func terminates(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Return:
			return true
		case *ast.IfStmt:
			if s.Else != nil && terminates(s.Then.Stmts) && terminates(s.Else.Stmts) {
				return true
			}
		}
	}
	return false
}
