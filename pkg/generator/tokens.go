package generator

import "regexp"

// tokenKind classifies one fragment of caller-supplied content.
type tokenKind int

const (
	tokenText tokenKind = iota
	tokenFigure
	tokenTable
	tokenEquation
	tokenCitation
	tokenSymbol
)

// token is one fragment of split content. For placeholder tokens, value is
// the payload between the colon and the closing brackets; for text it is the
// literal text.
type token struct {
	kind  tokenKind
	value string
}

// placeholderRe matches well-formed inline placeholder tokens. Malformed
// tokens never match and therefore survive as literal text; user content is
// never silently dropped.
var placeholderRe = regexp.MustCompile(`\[\[(FIG|TBL|EQ|REF|SYM):([^\[\]]*)\]\]`)

// symbolBreakRe captures line breaks hugging a symbol token. Symbols are
// inline by definition, so surrounding breaks are stripped before
// tokenizing.
var (
	symbolBreakBefore = regexp.MustCompile(`(?:\r?\n)+(\[\[SYM:[^\[\]]*\]\])`)
	symbolBreakAfter  = regexp.MustCompile(`(\[\[SYM:[^\[\]]*\]\])(?:\r?\n)+`)
)

var tokenKinds = map[string]tokenKind{
	"FIG": tokenFigure,
	"TBL": tokenTable,
	"EQ":  tokenEquation,
	"REF": tokenCitation,
	"SYM": tokenSymbol,
}

// splitTokens splits content on inline placeholder tokens, keeping literal
// text fragments in between.
func splitTokens(content string) []token {
	content = symbolBreakBefore.ReplaceAllString(content, "$1")
	content = symbolBreakAfter.ReplaceAllString(content, "$1")

	var out []token
	rest := content
	for {
		loc := placeholderRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if pre := rest[:loc[0]]; pre != "" {
			out = append(out, token{kind: tokenText, value: pre})
		}
		out = append(out, token{
			kind:  tokenKinds[rest[loc[2]:loc[3]]],
			value: rest[loc[4]:loc[5]],
		})
		rest = rest[loc[1]:]
	}
	if rest != "" {
		out = append(out, token{kind: tokenText, value: rest})
	}
	return out
}
