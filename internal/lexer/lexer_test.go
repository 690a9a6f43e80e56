package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/token"
)

func TestNextTokenBasics(t *testing.T) {
	input := `let int x = 5; x + 4 >= 9`
	l := lexer.New(input)

	expected := []token.Type{
		token.LET, token.TYPE_INT, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON,
		token.IDENT, token.PLUS, token.INT, token.GT_EQ, token.INT, token.EOF,
	}
	for i, want := range expected {
		tok := l.NextToken()
		require.Equal(t, want, tok.Type, "token %d", i)
	}
}

func TestTwoCharOperators(t *testing.T) {
	l := lexer.New("-> == != <= >= && ||")
	var got []token.Type
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		got = append(got, tok.Type)
	}
	require.Equal(t, []token.Type{
		token.ARROW, token.EQ, token.NOT_EQ, token.LT_EQ, token.GT_EQ, token.AND, token.OR,
	}, got)
}

func TestStringAndCharEscapes(t *testing.T) {
	l := lexer.New(`"a\nb" 'x' '\n'`)

	str := l.NextToken()
	require.Equal(t, token.STRING, str.Type)
	require.Equal(t, "a\nb", str.Literal)

	ch := l.NextToken()
	require.Equal(t, token.CHAR, ch.Type)
	require.Equal(t, "x", ch.Literal)

	nl := l.NextToken()
	require.Equal(t, token.CHAR, nl.Type)
	require.Equal(t, "\n", nl.Literal)
}

func TestLineAndColumnTracking(t *testing.T) {
	l := lexer.New("a\nb")
	first := l.NextToken()
	require.Equal(t, 1, first.Pos.Line)
	second := l.NextToken()
	require.Equal(t, 2, second.Pos.Line)
}

func TestCommentsSkipped(t *testing.T) {
	l := lexer.New("1 // comment\n2")
	first := l.NextToken()
	require.Equal(t, "1", first.Lexeme)
	second := l.NextToken()
	require.Equal(t, "2", second.Lexeme)
}
