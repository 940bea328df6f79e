// Package lexer streams a Metamath source file into whitespace-separated
// tokens, resolving $[ ... $] include directives and capturing $( ... $)
// comments as a side list.
package lexer

import (
	"io"
	"io/fs"
	"strings"
)

// Position is a 1-based line/column location in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// LexerError reports a tokenising failure at a Position (spec.md §4.1).
type LexerError struct {
	Message string
	Pos     Position
}

func (e *LexerError) Error() string { return e.Message }

// TokenKind distinguishes the few token shapes the reader cares about;
// most tokens are just Word (either a statement keyword, a label or a
// math symbol — the reader decides which from context).
type TokenKind int

const (
	Word TokenKind = iota
)

// Token is one maximal run of non-whitespace printable ASCII, with the
// position of its first character.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Comment is a captured $( ... $) block: its text (the tokens between
// the delimiters, space-joined) and the index, into the token stream
// returned alongside it, of the token that follows the comment.
type Comment struct {
	Text       string
	FollowedBy int
}

// LexerOption configures a Lexer constructed by New.
type LexerOption func(*lexerState)

// WithName sets the display name (used in Position.File and for include
// dedup) of the root file being read.
func WithName(name string) LexerOption {
	return func(l *lexerState) { l.rootName = name }
}

type lexerState struct {
	fsys     fs.FS
	rootName string
	included map[string]struct{}

	tokens   []Token
	comments []Comment
}

// Read tokenises rootPath (and every file it transitively $[ includes])
// found in fsys, returning the flattened token stream and the comments
// encountered along the way. Each distinct include filename (by raw
// spelling, not canonical path — Design Note "duplicate include
// semantics") is read at most once.
func Read(fsys fs.FS, rootPath string, opts ...LexerOption) ([]Token, []Comment, error) {
	l := &lexerState{
		fsys:     fsys,
		rootName: rootPath,
		included: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.readFile(rootPath, l.rootName); err != nil {
		return nil, nil, err
	}
	return l.tokens, l.comments, nil
}

// readFile opens path in fsys; name is the display name used for
// Position.File and as the include-dedup key.
func (l *lexerState) readFile(path, name string) error {
	if _, seen := l.included[name]; seen {
		return nil
	}
	l.included[name] = struct{}{}

	f, err := l.fsys.Open(path)
	if err != nil {
		return &LexerError{Message: "could not open " + name}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return &LexerError{Message: "error reading from " + name}
	}

	sc := newScanner(name, string(data))

	instatement := false
	scopecount := 0

	for {
		tok, ok, err := sc.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		switch tok.Text {
		case "$(":
			text, err := sc.readComment()
			if err != nil {
				return err
			}
			l.comments = append(l.comments, Comment{Text: text, FollowedBy: len(l.tokens)})
			continue

		case "$[":
			if scopecount > 0 {
				return &LexerError{Message: "file inclusion command not in outermost scope", Pos: tok.Pos}
			}
			if instatement {
				return &LexerError{Message: "file inclusion command in a statement", Pos: tok.Pos}
			}
			filename, err := sc.readIncludeName()
			if err != nil {
				return err
			}
			if err := l.readFile(filename, filename); err != nil {
				return err
			}
			continue

		case "${":
			scopecount++
		case "$}":
			if scopecount == 0 {
				return &LexerError{Message: "unmatched $}", Pos: tok.Pos}
			}
			scopecount--
		case "$c", "$v", "$f", "$e", "$d", "$a", "$p":
			instatement = true
		case "$.":
			instatement = false
		}

		l.tokens = append(l.tokens, tok)
	}

	return nil
}

// scanner tokenises a single file's already-loaded contents.
type scanner struct {
	file string
	src  string
	pos  int
	line int
	col  int
}

func newScanner(file, src string) *scanner {
	return &scanner{file: file, src: src, line: 1, col: 0}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isPrintableASCII(b byte) bool {
	return b >= 0x21 && b <= 0x7e
}

func (sc *scanner) advance() byte {
	b := sc.src[sc.pos]
	sc.pos++
	if b == '\n' {
		sc.line++
		sc.col = 0
	} else {
		sc.col++
	}
	return b
}

func (sc *scanner) skipWhitespace() {
	for sc.pos < len(sc.src) && isWhitespace(sc.src[sc.pos]) {
		sc.advance()
	}
}

// next returns the next maximal run of non-whitespace printable ASCII,
// or ok=false at EOF.
func (sc *scanner) next() (Token, bool, error) {
	sc.skipWhitespace()
	if sc.pos >= len(sc.src) {
		return Token{}, false, nil
	}

	startLine, startCol := sc.line, sc.col+1
	start := sc.pos
	for sc.pos < len(sc.src) && !isWhitespace(sc.src[sc.pos]) {
		b := sc.src[sc.pos]
		if !isPrintableASCII(b) {
			return Token{}, false, &LexerError{
				Message: "invalid character in token",
				Pos:     Position{File: sc.file, Line: sc.line, Column: sc.col + 1},
			}
		}
		sc.advance()
	}

	return Token{
		Kind: Word,
		Text: sc.src[start:sc.pos],
		Pos:  Position{File: sc.file, Line: startLine, Column: startCol},
	}, true, nil
}

// readComment reads tokens until a "$)" delimiter, joining them with a
// single space. It is called immediately after the opening "$(" has
// already been consumed by next().
func (sc *scanner) readComment() (string, error) {
	var parts []string
	for {
		tok, ok, err := sc.next()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &LexerError{Message: "unterminated comment"}
		}
		if tok.Text == "$)" {
			return strings.Join(parts, " "), nil
		}
		if tok.Text == "$(" {
			return "", &LexerError{Message: "$( inside a comment", Pos: tok.Pos}
		}
		parts = append(parts, tok.Text)
	}
}

// readIncludeName reads the "filename $]" pair following a "$[" token.
func (sc *scanner) readIncludeName() (string, error) {
	nameTok, ok, err := sc.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &LexerError{Message: "unfinished file inclusion command"}
	}
	if strings.Contains(nameTok.Text, "$") {
		return "", &LexerError{Message: "filename contains a $", Pos: nameTok.Pos}
	}

	closeTok, ok, err := sc.next()
	if err != nil {
		return "", err
	}
	if !ok || closeTok.Text != "$]" {
		return "", &LexerError{Message: "didn't find closing file inclusion delimiter", Pos: nameTok.Pos}
	}

	return nameTok.Text, nil
}
