// Package fixture implements a tiny textual mini-language for constructing
// ir.Function values tersely in tests, instead of hand-calling
// Context/Module/Inserter constructors line by line. A fixture looks like:
//
//	fn add(x: i32, y: i32) -> i32 {
//	entry: %0 = add x, y; ret %0
//	}
//
// Build parses the source with a participle-generated parser and replays
// the parsed program straight through ir.Inserter, the same role
// participle plays for the teacher's own contract source.
package fixture

import "github.com/alecthomas/participle/v2/lexer"

var fixtureLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `0x[0-9a-fA-F]+|-?[0-9]+`, nil},
		{"Punctuation", `->|[%(){}\[\],:;=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
