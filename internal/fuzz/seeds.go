package fuzztests

import "testing"

// maxSeedBytes bounds corpus entries so one pathological input cannot blow
// up the fuzz corpus.
const maxSeedBytes = 64 << 10

var languageSeeds = []string{
	"",
	"print(1)\n",
	"f(1, y=2)\n",
	"g(*xs, **kw)\n",
	"def f(a, b=1, *rest, **extra) {\n    return a + b\n}\n",
	"class Point {\n    def init(self, x) { self.x = x }\n}\n",
	"if a < b { f() } else { g() }\n",
	"while i < 10 { i = i + 1 }\n",
	"xs = [1, 2, 3]\nm = {\"a\": 1}\n",
	"x = \"a \\\"quoted\\\" string\\n\"\n",
	"# comment only\n",
	"f(\n    1,\n    2,\n)\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
