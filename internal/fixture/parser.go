package fixture

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"

	"midend/internal/diag"
)

var fixtureParser = participle.MustBuild[Program](
	participle.Lexer(fixtureLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// parse runs src through the fixture grammar. A malformed fixture is a bug
// in the calling test, not recoverable input, so failures go through
// diag.Invariant rather than an error return.
func parse(src string) *Program {
	program, err := fixtureParser.ParseString("fixture", src)
	diag.Invariant(err == nil, "fixture.Build: %s", describeParseError(src, err))
	return program
}

func describeParseError(src string, err error) string {
	if err == nil {
		return ""
	}
	pe, ok := err.(participle.Error)
	if !ok {
		return err.Error()
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return fmt.Sprintf("%s (unknown location)", pe.Message())
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"
	return fmt.Sprintf("line %d, column %d:\n%s\n%s\n%s", pos.Line, pos.Column, line, caret, pe.Message())
}
