package fuzztests

import (
	"testing"

	"flowtrace/internal/ast"
	"flowtrace/internal/parser"
	"flowtrace/internal/rewrite"
	"flowtrace/internal/source"
)

func FuzzParser(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(_ *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}

		fs := source.NewFileSet()
		parser.ParseSource(fs, "fuzz.flow", string(input))
	})
}

// FuzzRewriteRoundTrip instruments every unit that parses cleanly and
// checks the rewritten form still parses. A rewriter that produces
// unparsable output would break the rewrite subcommand.
func FuzzRewriteRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}

		fs := source.NewFileSet()
		res := parser.ParseSource(fs, "fuzz.flow", string(input))
		if res.Err() != nil {
			return
		}

		unit, err := rewrite.NewTraceCalls().Rewrite(res.Unit)
		if err != nil {
			return
		}

		printed := ast.Print(unit)
		fs2 := source.NewFileSet()
		if res2 := parser.ParseSource(fs2, "rewritten.flow", printed); res2.Err() != nil {
			t.Fatalf("instrumented form does not parse: %v\nsource:\n%s", res2.Err(), printed)
		}
	})
}
