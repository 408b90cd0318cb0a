// Package noexit содержит анализатор, запрещающий завершать процесс прямо из main.main.
//
// Запрещены os.Exit, встроенный panic и log.Fatal*, log.Panic* из стандартной библиотеки.
// Ошибка должна возвращаться из функции запуска и обрабатываться логгером приложения.
package noexit

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer проверяет тело main.main
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "запрещает прямое завершение процесса в функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// forbidden функции пакетов, завершающие процесс
var forbidden = map[string]func(name string) bool{
	"os":  func(name string) bool { return name == "Exit" },
	"log": func(name string) bool { return strings.HasPrefix(name, "Fatal") || strings.HasPrefix(name, "Panic") },
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	ins.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}
		if strings.HasSuffix(pass.Fset.Position(fn.Pos()).Filename, "_test.go") {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			// замыкания выполняются не обязательно в main
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if name, ok := terminates(pass, call); ok {
				pass.Reportf(call.Pos(), "прямой вызов %s в функции main запрещен", name)
			}
			return true
		})
	})
	return nil, nil
}

// terminates сообщает, завершает ли вызов процесс, и возвращает его имя
func terminates(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		if b, ok := pass.TypesInfo.Uses[fun].(*types.Builtin); ok && b.Name() == "panic" {
			return "panic", true
		}
	case *ast.SelectorExpr:
		ident, ok := fun.X.(*ast.Ident)
		if !ok {
			return "", false
		}
		pkg, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
		if !ok {
			return "", false
		}
		path := pkg.Imported().Path()
		if check, ok := forbidden[path]; ok && check(fun.Sel.Name) {
			return path + "." + fun.Sel.Name, true
		}
	}
	return "", false
}
