// Package comment parses the $j convention-comment mini-language: a
// sequence of semicolon-terminated commands embedded in ordinary
// Metamath comments that feed type-code and definition metadata to the
// syntax parser and definition checker (spec.md §6 "Convention
// comments").
package comment

import (
	"strings"

	"github.com/mm-go/verifier/internal/lexer"
	"github.com/mm-go/verifier/internal/mm"
)

// TypeCode is a type code declared or aliased by a syntax command.
type TypeCode struct {
	Name    string
	AliasOf string
	Bound   bool
}

// Primitive reports whether t is atomic to the syntax parser: a type
// code with no alias is taken as primitive (spec.md glossary).
func (t *TypeCode) Primitive() bool { return t.AliasOf == "" }

// Info is the metadata extracted from every $j comment in a file.
type Info struct {
	TypeCodes map[string]*TypeCode

	// Definitions maps a constructor label to the label of the
	// assertion that defines it, or "" if a primitive command marked
	// it primitive instead.
	Definitions map[string]string
}

func newInfo() *Info {
	return &Info{
		TypeCodes:   make(map[string]*TypeCode),
		Definitions: make(map[string]string),
	}
}

type commandError string

func (e commandError) Error() string { return string(e) }

// Parse extracts every $j command from comments. A malformed or
// conflicting command is reported as a warning and skipped; it never
// aborts parsing of the remaining commands or comments. $t comments
// (typesetting information) carry no commands relevant to verification
// and are ignored.
func Parse(comments []lexer.Comment) (*Info, []string) {
	info := newInfo()
	var warnings []string

	for _, c := range comments {
		fields := strings.Fields(c.Text)
		if len(fields) == 0 || fields[0] != "$j" {
			continue
		}
		for _, cmd := range splitCommands(fields[1:]) {
			if len(cmd) == 0 {
				continue
			}
			if err := info.apply(cmd); err != nil {
				warnings = append(warnings, err.Error())
			}
		}
	}

	return info, warnings
}

// splitCommands breaks fields (already whitespace-split) into commands
// terminated by ';'. A semicolon may be glued to the preceding word
// with no surrounding space, matching the original strtok-on-";"
// scanning.
func splitCommands(fields []string) [][]string {
	var commands [][]string
	var current []string

	for _, f := range fields {
		parts := strings.Split(f, ";")
		for i, p := range parts {
			if p != "" {
				current = append(current, p)
			}
			if i < len(parts)-1 {
				if len(current) > 0 {
					commands = append(commands, current)
				}
				current = nil
			}
		}
	}
	if len(current) > 0 {
		commands = append(commands, current)
	}
	return commands
}

func (info *Info) apply(cmd []string) error {
	switch cmd[0] {
	case "syntax":
		return info.addSyntax(cmd[1:])
	case "bound":
		return info.addBound(cmd[1:])
	case "definition":
		return info.addDefinition(cmd[1:])
	case "primitive":
		return info.addPrimitive(cmd[1:])
	default:
		return nil
	}
}

func unquote(s string) (string, bool) {
	if len(s) < 3 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func (info *Info) addSyntax(args []string) error {
	if len(args) != 1 && !(len(args) == 3 && args[1] == "as") {
		return commandError("malformed syntax command")
	}
	name, ok := unquote(args[0])
	if !ok {
		return commandError("syntax command: expected a quoted type code")
	}
	if _, exists := info.TypeCodes[name]; exists {
		return commandError("type code " + name + " already declared")
	}
	tc := &TypeCode{Name: name}
	info.TypeCodes[name] = tc
	if len(args) == 1 {
		return nil
	}

	astype, ok := unquote(args[2])
	if !ok {
		return commandError("syntax command: expected a quoted alias type code")
	}
	if _, exists := info.TypeCodes[astype]; !exists {
		return commandError("type code " + astype + " does not exist")
	}
	tc.AliasOf = astype
	return nil
}

func (info *Info) addBound(args []string) error {
	if len(args) != 1 {
		return commandError("malformed bound command")
	}
	name, ok := unquote(args[0])
	if !ok {
		return commandError("bound command: expected a quoted type code")
	}
	tc, exists := info.TypeCodes[name]
	if !exists {
		return commandError("type code " + name + " does not exist")
	}
	tc.Bound = true
	return nil
}

func (info *Info) addDefinition(args []string) error {
	if len(args) != 3 || args[1] != "for" {
		return commandError("malformed definition command")
	}
	df, ok := unquote(args[0])
	if !ok {
		return commandError("definition command: expected a quoted definition label")
	}
	ctor, ok := unquote(args[2])
	if !ok {
		return commandError("definition command: expected a quoted constructor label")
	}
	if _, exists := info.Definitions[ctor]; exists {
		return commandError("constructor " + ctor + " already has a definition")
	}
	info.Definitions[ctor] = df
	return nil
}

func (info *Info) addPrimitive(args []string) error {
	for _, tok := range args {
		ctor, ok := unquote(tok)
		if !ok {
			return commandError("primitive command: expected a quoted constructor label")
		}
		if _, exists := info.Definitions[ctor]; exists {
			return commandError("constructor " + ctor + " already has a definition")
		}
		info.Definitions[ctor] = ""
	}
	return nil
}

// PrimitiveTypes resolves every declared type code against db's
// constants, keyed by resolved symbol, reporting whether each is
// primitive. A type code named in a convention comment but never
// declared with $c is skipped; internal/syntax then defaults it to
// primitive, matching the "never aliased" rule.
func (info *Info) PrimitiveTypes(db *mm.Database) map[*mm.Symbol]bool {
	result := make(map[*mm.Symbol]bool, len(info.TypeCodes))
	for name, tc := range info.TypeCodes {
		sym, ok := db.Constants[name]
		if !ok {
			continue
		}
		result[sym] = tc.Primitive()
	}
	return result
}

// BoundTypes resolves the type codes marked by a bound command against
// db's constants (spec.md §4.9 definition rule 5: every dummy
// variable's type must be declared bound).
func (info *Info) BoundTypes(db *mm.Database) map[*mm.Symbol]bool {
	result := make(map[*mm.Symbol]bool)
	for name, tc := range info.TypeCodes {
		if !tc.Bound {
			continue
		}
		if sym, ok := db.Constants[name]; ok {
			result[sym] = true
		}
	}
	return result
}

// NormalizeTypes resolves every aliased type code to its primitive root
// against db's constants, following the alias chain the way
// original_source/typecode.h's Typecodes::normalize does. A type code
// with no alias (or absent from db's constants) is omitted; a caller
// that finds no entry for a symbol should treat it as already
// primitive. This is what lets a '|-' conclusion aliased "as 'wff'" be
// parsed against the wff syntax axioms (spec.md §4.8, §6).
func (info *Info) NormalizeTypes(db *mm.Database) map[*mm.Symbol]*mm.Symbol {
	result := make(map[*mm.Symbol]*mm.Symbol, len(info.TypeCodes))
	for name, tc := range info.TypeCodes {
		if tc.AliasOf == "" {
			continue
		}
		sym, ok := db.Constants[name]
		if !ok {
			continue
		}
		root := tc
		for root.AliasOf != "" {
			next, ok := info.TypeCodes[root.AliasOf]
			if !ok {
				break
			}
			root = next
		}
		if rootSym, ok := db.Constants[root.Name]; ok {
			result[sym] = rootSym
		}
	}
	return result
}
