package verb

import (
	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/queryerr"
)

// Build constructs one concrete Verb from a parsed ast.Verb, validating
// its argument shape against the table in spec §4.1. The verb name is
// already known-good (internal/ast/parser.go checked it against the
// closed knownVerbs set); this is where required-argument and
// argument-count errors surface.
func Build(v ast.Verb, path string) (Verb, error) {
	switch v.Name {
	case "select":
		name, ok := argValue(v, "name", 0)
		if !ok {
			return nil, badShape(v, path, "@select requires a \"name\" argument")
		}
		return NameSelector{Query: name}, nil

	case "forced":
		name, ok := argValue(v, "name", 0)
		if !ok {
			return nil, badShape(v, path, "@forced requires a \"name\" argument")
		}
		return ForcedVerb{Query: name}, nil

	case "ignore":
		name, _ := argValue(v, "", 0)
		pkg, _ := v.Named("package")
		if name == "" && pkg == "" {
			return nil, badShape(v, path, "@ignore requires a name and/or a \"package\" argument")
		}
		return IgnoreVerb{Name_: name, Package: pkg}, nil

	case "module":
		m, ok := argValue(v, "", 0)
		if !ok {
			return nil, badShape(v, path, "@module requires one positional argument")
		}
		return ModuleFilter{Module: m}, nil

	case "scope":
		isolated := false
		if raw, ok := v.Named("isolated"); ok {
			isolated = raw == "true"
		}
		return IsolatedScope{Isolated: isolated}, nil

	case "label":
		l, ok := argValue(v, "", 0)
		if !ok {
			return nil, badShape(v, path, "@label requires one positional argument")
		}
		return LabelVerb{Label_: l}, nil

	case "use":
		l, ok := argValue(v, "", 0)
		if !ok {
			return nil, badShape(v, path, "@use requires one positional argument")
		}
		forced := false
		if raw, ok := v.Named("forced"); ok {
			forced = raw == "true"
		}
		return UserVerb{Label_: l, Forced_: forced}, nil

	case "preamble":
		return PreambleVerb{}, nil

	default:
		return nil, badShape(v, path, "unknown verb \""+v.Name+"\"")
	}
}

// argValue fetches a positional-or-named argument: either a named
// argument called name (if name != ""), or the i-th positional value.
func argValue(v ast.Verb, name string, i int) (string, bool) {
	if name != "" {
		if val, ok := v.Named(name); ok {
			return val, true
		}
	}
	return v.Positional(i)
}

func badShape(v ast.Verb, path, msg string) error {
	return queryerr.Parse(queryerr.CodeBadArgumentShape, msg, queryerr.Location{
		Offset: v.Pos.Offset, Line: v.Pos.Line, Col: v.Pos.Col, Path: path,
	})
}
