package ast

import (
	"github.com/oxhq/askl/internal/queryerr"
)

// knownVerbs is the closed set of general-verb names §4.1 recognizes,
// beyond the two sugar forms (plain/forced selector).
var knownVerbs = map[string]bool{
	"select":  true,
	"forced":  true,
	"ignore":  true,
	"module":  true,
	"scope":   true,
	"label":   true,
	"use":     true,
	"preamble": true,
}

// Parser builds a Tree from a token stream produced by Lexer.
type Parser struct {
	lex     *Lexer
	tok     Token
	peeked  bool
	tree    *Tree
	atTopLevel bool
	topLevelIdx int
}

// Parse parses ASKL source into a Tree, or returns a *ParseError / *LexError.
func Parse(src string) (*Tree, error) {
	p := &Parser{lex: NewLexer(src), tree: &Tree{}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	p.atTopLevel = true
	p.topLevelIdx = 0
	top, err := p.parseStatementList(false)
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeGrammarMismatch, Msg: "unexpected trailing input"}
	}

	root := p.tree.alloc(nil)
	p.tree.Statements[root].Children = top
	p.tree.Root = root
	p.tree.installParents()
	p.tree.HasPreamble = treeHasPreamble(p.tree)

	return p.tree, nil
}

// treeHasPreamble reports whether the first verb of the first top-level
// statement is @preamble. Parsing already rejected any other placement.
func treeHasPreamble(t *Tree) bool {
	root := t.Get(t.Root)
	if len(root.Children) == 0 {
		return false
	}
	first := t.Get(root.Children[0])
	return len(first.Verbs) > 0 && first.Verbs[0].Name == "preamble"
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) skipSeps() error {
	for p.tok.Kind == TokSep {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseStatementList parses a (possibly empty) sequence of statements,
// stopping at '}' (if inScope) or EOF.
func (p *Parser) parseStatementList(inScope bool) ([]StatementID, error) {
	var ids []StatementID
	if err := p.skipSeps(); err != nil {
		return nil, err
	}
	for {
		if p.tok.Kind == TokEOF {
			break
		}
		if inScope && p.tok.Kind == TokRBrace {
			break
		}
		id, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		if p.atTopLevel {
			p.topLevelIdx++
		}
		if err := p.skipSeps(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// parseStatement parses one verb list followed by an optional {scope}.
func (p *Parser) parseStatement() (StatementID, error) {
	isFirstStatement := p.atTopLevel && p.topLevelIdx == 0

	var verbs []Verb
	verbIdx := 0
	for {
		if p.tok.Kind == TokSep || p.tok.Kind == TokEOF || p.tok.Kind == TokRBrace || p.tok.Kind == TokLBrace {
			break
		}
		verb, err := p.parseVerb(isFirstStatement && verbIdx == 0)
		if err != nil {
			return 0, err
		}
		verbs = append(verbs, verb)
		verbIdx++
	}

	id := p.tree.alloc(verbs)

	if p.tok.Kind == TokLBrace {
		if err := p.advance(); err != nil {
			return 0, err
		}
		wasTop := p.atTopLevel
		p.atTopLevel = false
		children, err := p.parseStatementList(true)
		p.atTopLevel = wasTop
		if err != nil {
			return 0, err
		}
		if p.tok.Kind != TokRBrace {
			return 0, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeGrammarMismatch, Msg: "expected '}' to close scope"}
		}
		if err := p.advance(); err != nil {
			return 0, err
		}
		if len(children) == 0 {
			// An empty scope `{}` holds one verb-less statement, so the
			// enclosing statement still has a child to derive into.
			children = []StatementID{p.tree.alloc(nil)}
		}
		p.tree.Statements[id].Children = children
	}

	return id, nil
}

// parseVerb parses one verb surface form: a plain/forced string sugar, or
// a general @ident(...) verb. allowPreamble gates whether @preamble is
// legal at this position (spec §4.1: only the first verb of the first
// top-level statement).
func (p *Parser) parseVerb(allowPreamble bool) (Verb, error) {
	start := p.tok.Pos

	switch p.tok.Kind {
	case TokString:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return Verb{}, err
		}
		return Verb{Name: "select", Args: []VerbArg{{Value: name}}, Pos: start}, nil

	case TokBang:
		if err := p.advance(); err != nil {
			return Verb{}, err
		}
		if p.tok.Kind != TokString {
			return Verb{}, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeGrammarMismatch, Msg: "expected string after '!'"}
		}
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return Verb{}, err
		}
		return Verb{Name: "forced", Args: []VerbArg{{Value: name}}, Pos: start}, nil

	case TokAt:
		if err := p.advance(); err != nil {
			return Verb{}, err
		}
		if p.tok.Kind != TokIdent {
			return Verb{}, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeGrammarMismatch, Msg: "expected verb name after '@'"}
		}
		name := p.tok.Text
		if !knownVerbs[name] {
			return Verb{}, &ParseError{Pos: start, Code: queryerr.CodeUnknownVerb, Msg: "unknown verb \"" + name + "\""}
		}
		if name == "preamble" && !allowPreamble {
			return Verb{}, &ParseError{
				Pos:  start,
				Code: queryerr.CodePreambleNotFirst,
				Msg:  "Preamble verb can only be used as the first verb of the first statement",
			}
		}
		if err := p.advance(); err != nil {
			return Verb{}, err
		}

		var args []VerbArg
		if p.tok.Kind == TokLParen {
			var err error
			args, err = p.parseArgList()
			if err != nil {
				return Verb{}, err
			}
		}
		return Verb{Name: name, Args: args, Pos: start}, nil

	default:
		return Verb{}, &ParseError{Pos: start, Code: queryerr.CodeGrammarMismatch, Msg: "expected a verb"}
	}
}

func (p *Parser) parseArgList() ([]VerbArg, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}

	var args []VerbArg
	if p.tok.Kind == TokRParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return args, nil
	}

	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if p.tok.Kind != TokRParen {
		return nil, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeBadArgumentShape, Msg: "expected ')' to close argument list"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArg parses either `ident=value` (named) or a bare `value`
// (positional). A value is a string literal or a bare identifier, since
// §4.1 says "all values are strings" without requiring quoting.
func (p *Parser) parseArg() (VerbArg, error) {
	if p.tok.Kind == TokIdent {
		ident := p.tok.Text
		// lookahead: an ident followed by '=' is a named argument;
		// otherwise the ident itself is a bare positional value.
		save := *p.lex
		savedTok := p.tok
		if err := p.advance(); err != nil {
			return VerbArg{}, err
		}
		if p.tok.Kind == TokEquals {
			if err := p.advance(); err != nil {
				return VerbArg{}, err
			}
			val, err := p.parseArgValue()
			if err != nil {
				return VerbArg{}, err
			}
			return VerbArg{Name: ident, Value: val}, nil
		}
		// not a named arg: restore lexer state and treat ident as positional
		*p.lex = save
		p.tok = savedTok
		if err := p.advance(); err != nil {
			return VerbArg{}, err
		}
		return VerbArg{Value: ident}, nil
	}
	if p.tok.Kind == TokString {
		val := p.tok.Text
		if err := p.advance(); err != nil {
			return VerbArg{}, err
		}
		return VerbArg{Value: val}, nil
	}
	return VerbArg{}, &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeBadArgumentShape, Msg: "expected argument value"}
}

func (p *Parser) parseArgValue() (string, error) {
	if p.tok.Kind != TokString && p.tok.Kind != TokIdent {
		return "", &ParseError{Pos: p.tok.Pos, Code: queryerr.CodeBadArgumentShape, Msg: "expected argument value"}
	}
	val := p.tok.Text
	if err := p.advance(); err != nil {
		return "", err
	}
	return val, nil
}
