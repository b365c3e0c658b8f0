// Package fuzztests houses Go fuzz harnesses that exercise the front of the
// pipeline (source -> lexer -> parser -> rewriter). Its goal is to smoke test
// robustness and guard against panics on arbitrary inputs.
package fuzztests
