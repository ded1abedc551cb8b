package ast

import (
	"fmt"

	"github.com/oxhq/askl/internal/queryerr"
)

// ParseError is a syntactic or verb-shape error raised while building the
// AST. Path is attached by the caller once the source's origin is known.
type ParseError struct {
	Pos  Position
	Code string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, col %d", e.Msg, e.Pos.Line, e.Pos.Col)
}

// ToQueryError renders a ParseError (or LexError) as the taxonomy's Parse
// category error, attaching path.
func ToQueryError(err error, path string) *queryerr.Error {
	switch e := err.(type) {
	case *ParseError:
		return queryerr.Parse(e.Code, e.Msg, queryerr.Location{
			Offset: e.Pos.Offset,
			Line:   e.Pos.Line,
			Col:    e.Pos.Col,
			Path:   path,
		})
	case *LexError:
		return queryerr.Parse(queryerr.CodeGrammarMismatch, e.Msg, queryerr.Location{
			Offset: e.Pos.Offset,
			Line:   e.Pos.Line,
			Col:    e.Pos.Col,
			Path:   path,
		})
	default:
		return queryerr.Parse(queryerr.CodeGrammarMismatch, err.Error(), queryerr.Location{Path: path})
	}
}
