package solver

import (
	"github.com/oxhq/askl/internal/oracle"
	"github.com/oxhq/askl/models"
)

// fixtureStore is a hand-built in-memory oracle.Store standing in for a
// real GORM-backed store in tests: three declarations (91 "a", 92 "b",
// 942 "main") with call edges a->b, main->a, main->b, mirroring the
// fixture spec §8's concrete scenarios are written against.
type fixtureStore struct {
	nodes   map[int32]oracle.SelectionNode
	callers map[int32][]int32 // decl id -> ids of declarations calling it
	callees map[int32][]int32 // decl id -> ids of declarations it calls
}

func newFixtureStore() *fixtureStore {
	nodes := map[int32]oracle.SelectionNode{
		91:  fixtureNode(91, "a"),
		92:  fixtureNode(92, "b"),
		942: fixtureNode(942, "main"),
	}
	edges := [][2]int32{{91, 92}, {942, 91}, {942, 92}}

	callers := map[int32][]int32{}
	callees := map[int32][]int32{}
	for _, e := range edges {
		callees[e[0]] = append(callees[e[0]], e[1])
		callers[e[1]] = append(callers[e[1]], e[0])
	}
	return &fixtureStore{nodes: nodes, callers: callers, callees: callees}
}

func fixtureNode(id int32, name string) oracle.SelectionNode {
	return oracle.SelectionNode{
		Symbol:      models.Symbol{ID: id, Name: name, SymbolPath: name, ModuleID: 1, Scope: models.ScopeGlobal},
		Declaration: models.Declaration{ID: id, SymbolID: id, FileID: 1, Kind: models.KindDefinition, StartByte: int64(id) * 100, EndByte: int64(id)*100 + 10},
		Module:      models.Module{ID: 1, Name: "pkg", ProjectID: 1},
		File:        models.File{ID: 1, ProjectID: 1, FilesystemPath: "main.go"},
		Project:     models.Project{ID: 1, Name: "proj"},
	}
}

func (s *fixtureStore) selectionFor(ids []int32) *oracle.Selection {
	sel := oracle.New()
	set := map[int32]bool{}
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok || set[id] {
			continue
		}
		set[id] = true
		sel.Nodes = append(sel.Nodes, n)
	}
	for id := range set {
		for _, caller := range s.callers[id] {
			callerNode, ok := s.nodes[caller]
			if !ok {
				continue
			}
			sel.Parents = append(sel.Parents, oracle.ParentReference{
				FromDeclaration: callerNode.Declaration, FromSymbol: callerNode.Symbol, FromModuleName: callerNode.Module.Name,
				ToDeclaration: s.nodes[id].Declaration, ToSymbol: s.nodes[id].Symbol,
				ReferenceID: caller*10000 + id,
				Occurrence:  oracle.Occurrence{FileID: 1, ProjectID: 1, StartOffset: 0, EndOffset: 1},
			})
		}
		for _, callee := range s.callees[id] {
			calleeNode, ok := s.nodes[callee]
			if !ok {
				continue
			}
			sel.Children = append(sel.Children, oracle.ChildReference{
				FromDeclaration: s.nodes[id].Declaration, FromSymbol: s.nodes[id].Symbol,
				ToDeclaration: calleeNode.Declaration, ToSymbol: calleeNode.Symbol, ToModuleName: calleeNode.Module.Name,
				ReferenceID: id*10000 + callee,
				Occurrence:  oracle.Occurrence{FileID: 1, ProjectID: 1, StartOffset: 0, EndOffset: 1},
			})
		}
	}
	return sel
}

func (s *fixtureStore) Find(mixins ...oracle.Mixin) (*oracle.Selection, error) {
	var ids []int32
	for id, n := range s.nodes {
		keep := true
		for _, m := range mixins {
			switch mx := m.(type) {
			case oracle.NameMixin:
				if n.Symbol.Name != mx.Name {
					keep = false
				}
			case oracle.CompoundNameMixin:
				if !oracle.MatchesPathGlob(n.Symbol.SymbolPath, mx.Query) {
					keep = false
				}
			case oracle.DeclarationIDMixin:
				found := false
				for _, want := range mx.IDs {
					if want == id {
						found = true
					}
				}
				if !found {
					keep = false
				}
			}
			if !keep {
				break
			}
		}
		if keep {
			ids = append(ids, id)
		}
	}
	return s.selectionFor(ids), nil
}

func (s *fixtureStore) FindByName(name string, mixins ...oracle.Mixin) (*oracle.Selection, error) {
	return s.Find(append([]oracle.Mixin{oracle.NameMixin{Name: name}}, mixins...)...)
}

func (s *fixtureStore) FindByDeclarationIDs(ids []int32) (*oracle.Selection, error) {
	return s.selectionFor(ids), nil
}

func (s *fixtureStore) ReadSource(fileID int32, start, end int64) (string, error) {
	return "", nil
}
