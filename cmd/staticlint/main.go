// Команда staticlint запускает набор анализаторов, которым проверяется код сервиса.
//
// Состав:
//   - проходы из golang.org/x/tools/go/analysis/passes: nilness, shadow, unreachable,
//     printf, assign, atomic, bools, buildtag, copylocks, errorsas, httpresponse,
//     lostcancel, unusedresult;
//   - все анализаторы SA из honnef.co/go/tools/staticcheck;
//   - ST1000 (комментарий пакета) и S1000 (лишний select с одним case);
//   - errcheck: непроверенные ошибки;
//   - noexit: завершение процесса напрямую из main.main.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"github.com/kisielk/errcheck/errcheck"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/tempizhere/surl/cmd/staticlint/noexit"
)

// extraChecks анализаторы вне класса SA
var extraChecks = map[string]bool{
	"ST1000": true,
	"S1000":  true,
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		nilness.Analyzer,
		shadow.Analyzer,
		unreachable.Analyzer,
		printf.Analyzer,
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		buildtag.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		unusedresult.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		list = append(list, a.Analyzer)
	}
	for _, a := range stylecheck.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			list = append(list, a.Analyzer)
		}
	}
	for _, a := range simple.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			list = append(list, a.Analyzer)
		}
	}

	return append(list, errcheck.Analyzer, noexit.Analyzer)
}

func main() {
	multichecker.Main(analyzers()...)
}
