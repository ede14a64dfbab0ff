// Package semantic turns test source text into TF-IDF vectors over a shared
// per-run vocabulary.
//
// Tokenization is deliberately shallow: a fixed keyword set, test-semantics
// words, call sites, class references, and a handful of meaningful variable
// names. There is no parsing beyond brace matching and no semantic code
// understanding.
package semantic

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"github.com/reductor/reductor/internal/domain"
)

// Document is one test's normalized token bag.
type Document struct {
	TestID string
	Terms  []string
}

// languageKeywords are kept verbatim (lower-cased).
var languageKeywords = map[string]struct{}{
	"function": {}, "class": {}, "interface": {}, "trait": {},
	"if": {}, "else": {}, "elseif": {}, "for": {}, "foreach": {},
	"while": {}, "do": {}, "switch": {}, "case": {}, "break": {},
	"continue": {}, "return": {}, "try": {}, "catch": {}, "finally": {},
	"throw": {}, "new": {}, "public": {}, "private": {}, "protected": {},
	"static": {}, "abstract": {}, "final": {}, "const": {},
	"int": {}, "float": {}, "string": {}, "bool": {}, "array": {},
	"null": {}, "true": {}, "false": {}, "void": {},
}

// testSemantics are domain words that distinguish what a test is about.
var testSemantics = map[string]struct{}{
	"success": {}, "fail": {}, "failure": {}, "error": {}, "exception": {},
	"valid": {}, "invalid": {}, "empty": {}, "missing": {},
	"create": {}, "update": {}, "delete": {}, "store": {}, "destroy": {},
	"authorized": {}, "unauthorized": {}, "forbidden": {},
	"expect": {}, "assert": {}, "mock": {}, "stub": {}, "fake": {},
	"should": {}, "test": {},
}

// meaningfulVariables are identifier names that carry intent on their own.
var meaningfulVariables = map[string]struct{}{
	"password": {}, "user": {}, "email": {}, "id": {}, "status": {},
	"response": {}, "request": {}, "token": {}, "data": {}, "result": {},
	"name": {}, "type": {}, "value": {}, "message": {}, "code": {},
	"amount": {}, "count": {},
}

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`(?m)(//|#).*$`)
	doubleQuoteRe  = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	singleQuoteRe  = regexp.MustCompile(`'(?:\\.|[^'\\])*'`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	tokenRe        = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|[0-9]+(?:\.[0-9]+)?`)
)

// BuildDocuments tokenizes the whole batch. A test whose source file cannot
// be found fails the run with a VectorizationError: one missing document
// would skew the shared vocabulary for everyone else.
func BuildDocuments(tests []domain.TestRecord) ([]Document, error) {
	docs := make([]Document, 0, len(tests))
	for _, t := range tests {
		source, err := resolveSource(t)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{TestID: t.TestID, Terms: tokenize(t, source)})
	}
	return docs, nil
}

// resolveSource returns the test's source text. An empty sourceText with a
// resolvable file path is read from disk; a file path that does not exist is
// an error, while a test with no source location at all degenerates to the
// synthetic document.
func resolveSource(t domain.TestRecord) (string, error) {
	if t.SourceText != "" {
		return t.SourceText, nil
	}
	if t.Path != "" && filepath.Ext(t.Path) != "" {
		data, err := os.ReadFile(t.Path)
		if err != nil {
			return "", &domain.VectorizationError{TestID: t.TestID, Reason: "source file " + t.Path + " not readable"}
		}
		return string(data), nil
	}
	return "", nil
}

// tokenize produces the token bag for one test. The synthetic marker terms
// are emitted unconditionally so the method name always contributes, even
// when every body token is dropped.
func tokenize(t domain.TestRecord, source string) []string {
	terms := []string{"test_method"}
	if t.Method != "" {
		terms = append(terms, strings.ToLower(t.Method))
	}

	doc := extractMethodBody(source, t.Method)
	if doc == "" {
		doc = classOf(t) + " " + t.Method
	}

	doc = stripNoise(doc)

	matches := tokenRe.FindAllStringIndex(doc, -1)
	for _, m := range matches {
		tok := doc[m[0]:m[1]]
		if term, ok := classify(tok, doc, m[1]); ok {
			terms = append(terms, term)
		}
	}
	return terms
}

// classOf returns the class-or-path part of the test ID.
func classOf(t domain.TestRecord) string {
	if i := strings.Index(t.TestID, "::"); i >= 0 {
		return t.TestID[:i]
	}
	return t.Path
}

// stripNoise removes comments, empties string literals, and collapses
// whitespace.
func stripNoise(s string) string {
	s = blockCommentRe.ReplaceAllString(s, " ")
	s = lineCommentRe.ReplaceAllString(s, " ")
	s = doubleQuoteRe.ReplaceAllString(s, `""`)
	s = singleQuoteRe.ReplaceAllString(s, `''`)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// classify applies the keep rules in order; the first matching rule decides
// the emitted term. end is the token's end offset, used to detect call sites.
func classify(tok, doc string, end int) (string, bool) {
	lower := strings.ToLower(tok)

	if unicode.IsDigit(rune(tok[0])) {
		return "num", true
	}
	if _, ok := languageKeywords[lower]; ok {
		return lower, true
	}
	if _, ok := testSemantics[lower]; ok {
		return lower, true
	}
	if end < len(doc) && doc[end] == '(' {
		return "call_" + lower, true
	}
	if strings.Contains(lower, "assert") || strings.Contains(lower, "expect") {
		return lower, true
	}
	if isPascalCase(tok) {
		return "class_" + lower, true
	}
	if _, ok := meaningfulVariables[lower]; ok {
		return lower, true
	}
	return "", false
}

// isPascalCase reports whether the token starts with an upper-case hump and
// at least one hump carries a lower-case letter (SCREAMING_CASE constants do
// not count as class references).
func isPascalCase(tok string) bool {
	if !unicode.IsUpper(rune(tok[0])) {
		return false
	}
	for _, part := range camelcase.Split(tok) {
		for _, r := range part {
			if unicode.IsLower(r) {
				return true
			}
		}
	}
	return false
}

// extractMethodBody finds `function <method>(` and returns the text between
// the method's balanced braces. Empty when the method cannot be located.
func extractMethodBody(source, method string) string {
	if source == "" || method == "" {
		return ""
	}
	re := regexp.MustCompile(`function\s+` + regexp.QuoteMeta(method) + `\s*\(`)
	loc := re.FindStringIndex(source)
	if loc == nil {
		return ""
	}

	open := strings.IndexByte(source[loc[1]:], '{')
	if open < 0 {
		return ""
	}
	start := loc[1] + open

	depth := 0
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return source[start+1 : i]
			}
		}
	}
	return ""
}
