package main

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
)

// OSExitAnalyzer reports direct calls to os.Exit in the main function of
// package main. Exiting there skips deferred cleanup such as closing the
// database pool and flushing logs.
var OSExitAnalyzer = &analysis.Analyzer{
	Name: "osexit",
	Doc:  "forbids direct os.Exit calls in main.main",
	Run:  runOSExit,
}

func runOSExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil {
				continue
			}

			ast.Inspect(fn.Body, func(node ast.Node) bool {
				call, ok := node.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				pkg, ok := sel.X.(*ast.Ident)
				if !ok {
					return true
				}
				if pkg.Name == "os" && sel.Sel.Name == "Exit" {
					pass.Reportf(call.Pos(), "direct os.Exit call in main.main")
				}
				return true
			})
		}
	}

	return nil, nil
}
