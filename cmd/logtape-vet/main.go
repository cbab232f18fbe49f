// Command logtape-vet runs the logtape analyzer as a go vet plugin or a
// standalone checker.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/logtape-go/logtape/cmd/logtape-vet/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
