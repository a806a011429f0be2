package interp

import (
	"fmt"
	"strings"
)

// PrettyString renders node as an indented tree, in the teacher's
// box-drawing style (value.go's token formatter): "├── " for a
// non-last child, "└── " for the last, with "│   "/"    " continuing
// the indent below.
func PrettyString(node AstNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", label(node))
	children := childrenOf(node)
	for i, c := range children {
		printNode(&b, c, "", i == len(children)-1)
	}
	return strings.TrimRight(b.String(), "\n")
}

func printNode(b *strings.Builder, node AstNode, prefix string, last bool) {
	branch, cont := "├── ", "│   "
	if last {
		branch, cont = "└── ", "    "
	}
	fmt.Fprintf(b, "%s%s%s\n", prefix, branch, label(node))
	childPrefix := prefix + cont
	children := childrenOf(node)
	for i, c := range children {
		printNode(b, c, childPrefix, i == len(children)-1)
	}
}

func label(node AstNode) string {
	switch n := node.(type) {
	case *Program:
		return "Program"
	case *FuncDecl:
		return fmt.Sprintf("FuncDecl(%s)", n.Name)
	case *ParamDecl:
		return fmt.Sprintf("ParamDecl(%s: %s)", n.Name, n.Type)
	case *VarDecl:
		return fmt.Sprintf("VarDecl(%s: %s)", n.Name, n.Type)
	case *DeclStmt:
		return "DeclStmt"
	case *ExprStmt:
		return "ExprStmt"
	case *CompoundStmt:
		return "CompoundStmt"
	case *IfStmt:
		return "IfStmt"
	case *WhileStmt:
		return "WhileStmt"
	case *ForStmt:
		return "ForStmt"
	case *ReturnStmt:
		return "ReturnStmt"
	case *Literal:
		return fmt.Sprintf("Literal(%d)", n.Value)
	case *DeclRef:
		return fmt.Sprintf("DeclRef(%s)", n.Name)
	case *UnaryExpr:
		if n.Op == UnaryDeref {
			return "UnaryExpr(*)"
		}
		return "UnaryExpr(-)"
	case *BinaryExpr:
		return fmt.Sprintf("BinaryExpr(%s)", n.Op)
	case *CastExpr:
		return fmt.Sprintf("CastExpr(%s)", n.Type)
	case *ParenExpr:
		return "ParenExpr"
	case *ArrSubExpr:
		return "ArrSubExpr"
	case *SizeofExpr:
		return fmt.Sprintf("SizeofExpr(%s)", n.Type)
	case *CallExpr:
		return fmt.Sprintf("CallExpr(%s)", n.Callee)
	default:
		return node.String()
	}
}

func childrenOf(node AstNode) []AstNode {
	var out []AstNode
	switch n := node.(type) {
	case *Program:
		for _, g := range n.Globals {
			out = append(out, g)
		}
		for _, fn := range n.Funcs {
			out = append(out, fn)
		}
	case *FuncDecl:
		for _, p := range n.Params {
			out = append(out, p)
		}
		if n.Body != nil {
			out = append(out, n.Body)
		}
	case *VarDecl:
		if n.Init != nil {
			out = append(out, n.Init)
		}
	case *DeclStmt:
		for _, d := range n.Decls {
			out = append(out, d)
		}
	case *ExprStmt:
		out = append(out, n.X)
	case *CompoundStmt:
		for _, s := range n.Stmts {
			out = append(out, s)
		}
	case *IfStmt:
		out = append(out, n.Cond, n.Then)
		if n.Else != nil {
			out = append(out, n.Else)
		}
	case *WhileStmt:
		out = append(out, n.Cond, n.Body)
	case *ForStmt:
		if n.Init != nil {
			out = append(out, n.Init)
		}
		if n.Cond != nil {
			out = append(out, n.Cond)
		}
		if n.Step != nil {
			out = append(out, n.Step)
		}
		out = append(out, n.Body)
	case *ReturnStmt:
		if n.X != nil {
			out = append(out, n.X)
		}
	case *UnaryExpr:
		out = append(out, n.X)
	case *BinaryExpr:
		out = append(out, n.L, n.R)
	case *CastExpr:
		out = append(out, n.X)
	case *ParenExpr:
		out = append(out, n.X)
	case *ArrSubExpr:
		out = append(out, n.Base, n.Index)
	case *CallExpr:
		for _, a := range n.Args {
			out = append(out, a)
		}
	}
	return out
}
