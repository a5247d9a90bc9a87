package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

type tokKind uint8

const (
	tokIdent tokKind = iota + 1
	tokQuotedIdent
	tokString
	tokNumber
	tokParam
	tokOperator
	tokPunct
	tokOther
)

type token struct {
	kind tokKind
	text string
}

// sqlLexer splits statement text into tokens. Rules are tried in order and
// the catch-all Other rule keeps stray characters from failing the lex.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
	{Name: "Param", Pattern: `\$[0-9]+`},
	{Name: "Number", Pattern: `(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `::|<=|>=|<>|!=|\|\||[-+*/%=<>!]`},
	{Name: "Punct", Pattern: `[(),;.\[\]:]`},
	{Name: "Other", Pattern: `.`},
})

var tokKinds = func() map[lexer.TokenType]tokKind {
	sym := sqlLexer.Symbols()
	return map[lexer.TokenType]tokKind{
		sym["Ident"]:       tokIdent,
		sym["QuotedIdent"]: tokQuotedIdent,
		sym["String"]:      tokString,
		sym["Number"]:      tokNumber,
		sym["Param"]:       tokParam,
		sym["Operator"]:    tokOperator,
		sym["Punct"]:       tokPunct,
		sym["Other"]:       tokOther,
	}
}()

// tokenize drops whitespace and comments. Quoted identifiers come back
// unquoted; string literals keep their quotes.
func tokenize(sql string) ([]token, error) {
	lex, err := sqlLexer.Lex("", strings.NewReader(sql))
	if err != nil {
		return nil, fmt.Errorf("parser: lex: %w", err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("parser: lex: %w", err)
	}

	out := make([]token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}
		kind, ok := tokKinds[t.Type]
		if !ok {
			// whitespace, comments
			continue
		}
		text := t.Value
		if kind == tokQuotedIdent {
			text = strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)
		}
		out = append(out, token{kind: kind, text: text})
	}
	return out, nil
}
