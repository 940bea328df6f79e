package lexer

import (
	"testing"
	"testing/fstest"
)

func tokenTexts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestRead_MinimalFile(t *testing.T) {
	fsys := fstest.MapFS{
		"db.mm": {Data: []byte(`$c wff $. $v p $. wp $f wff p $. $( done $)`)},
	}

	toks, comments, err := Read(fsys, "db.mm")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []string{"$c", "wff", "$.", "$v", "p", "$.", "wp", "$f", "wff", "p", "$."}
	got := tokenTexts(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if len(comments) != 1 || comments[0].Text != "done" {
		t.Fatalf("comments = %+v, want one comment 'done'", comments)
	}
	if comments[0].FollowedBy != len(toks) {
		t.Errorf("comment.FollowedBy = %d, want %d (end of stream)", comments[0].FollowedBy, len(toks))
	}
}

func TestRead_IncludeDedupByRawName(t *testing.T) {
	fsys := fstest.MapFS{
		"main.mm": {Data: []byte(`$[ a.mm $] $[ a.mm $] $c wff $.`)},
		"a.mm":    {Data: []byte(`$v x $.`)},
	}

	toks, _, err := Read(fsys, "main.mm")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []string{"$v", "x", "$.", "$c", "wff", "$."}
	got := tokenTexts(toks)
	if len(got) != len(want) {
		t.Fatalf("second $[ a.mm $] should be silently skipped: got %v", got)
	}
}

func TestRead_IncludeInsideScopeFails(t *testing.T) {
	fsys := fstest.MapFS{
		"main.mm": {Data: []byte(`${ $[ a.mm $] $}`)},
		"a.mm":    {Data: []byte(`$v x $.`)},
	}

	if _, _, err := Read(fsys, "main.mm"); err == nil {
		t.Fatal("expected error for $[ inside a scope")
	}
}

func TestRead_UnterminatedCommentFails(t *testing.T) {
	fsys := fstest.MapFS{"main.mm": {Data: []byte(`$( never closed`)}}

	if _, _, err := Read(fsys, "main.mm"); err == nil {
		t.Fatal("expected error for unterminated comment")
	}
}

func TestRead_InvalidByteFails(t *testing.T) {
	fsys := fstest.MapFS{"main.mm": {Data: []byte("$c wff\x01 $.")}}

	if _, _, err := Read(fsys, "main.mm"); err == nil {
		t.Fatal("expected error for non-printable-ASCII byte")
	}
}

func TestRead_VerticalTabIsNotWhitespace(t *testing.T) {
	// A vertical tab inside a token run does not split it; here it
	// simply becomes part of the token and is rejected as non-printable,
	// matching readfile.cpp's preparestream("\v") behaviour of treating
	// \v as an ordinary (non-whitespace) character.
	fsys := fstest.MapFS{"main.mm": {Data: []byte("$c\vwff $.")}}

	if _, _, err := Read(fsys, "main.mm"); err == nil {
		t.Fatal("expected error: \\v is not printable ASCII and not whitespace")
	}
}
