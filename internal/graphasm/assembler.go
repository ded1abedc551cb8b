// Package graphasm is the graph assembler (spec §4.6): after the solver
// reaches quiescence, it collapses every statement's selected
// declarations by symbol, merges the enumerated call edges, and
// collects the referenced files into the §6.1 result shape.
package graphasm

import (
	"sort"
	"strconv"

	"github.com/oxhq/askl/internal/execctx"
	"github.com/oxhq/askl/internal/oracle"
	"github.com/oxhq/askl/internal/queryerr"
	"github.com/oxhq/askl/internal/solver"
)

// Declaration is one declaration point of a merged symbol node.
type Declaration struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	FileID      string `json:"file_id"`
	ProjectID   string `json:"project_id"`
	SymbolType  string `json:"symbol_type"`
	StartOffset int64  `json:"start_offset"`
	EndOffset   int64  `json:"end_offset"`
}

// Node groups every selected declaration of one symbol (spec §8 property
// 5: "symbol collapse").
type Node struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Declarations []Declaration `json:"declarations"`

	declSeen map[int32]bool
}

// Edge is one call edge in the result. Id is "{from}-{to}" over symbol
// ids; matching-endpoint edges with different occurrences share an id
// and are not deduplicated at this layer (spec §6.1).
type Edge struct {
	ID              string `json:"id"`
	From            string `json:"from"`
	To              string `json:"to"`
	FromFile        string `json:"from_file"`
	FromProjectID   string `json:"from_project_id"`
	FromOffsetStart int64  `json:"from_offset_start"`
	FromOffsetEnd   int64  `json:"from_offset_end"`
}

// File is one file referenced by any selected declaration.
type File struct {
	FileID    string `json:"file_id"`
	Path      string `json:"path"`
	ProjectID string `json:"project_id"`
}

// Result is the complete §6.1 response document.
type Result struct {
	Nodes    []Node           `json:"nodes"`
	Edges    []Edge           `json:"edges"`
	Files    []File           `json:"files"`
	Warnings []*queryerr.Error `json:"warnings"`
}

// Assemble builds the final Result from a quiesced execution context,
// the edges solver.EnumerateEdges produced, and any non-fatal parse
// warnings collected along the way.
func Assemble(ec *execctx.Context, edges []solver.Edge, warnings []*queryerr.Error) *Result {
	nodes := map[int32]*Node{}
	files := map[int32]File{}

	addNode := func(n oracle.SelectionNode) {
		out, ok := nodes[n.Symbol.ID]
		if !ok {
			out = &Node{ID: itoa(n.Symbol.ID), Label: n.Symbol.Name, declSeen: map[int32]bool{}}
			nodes[n.Symbol.ID] = out
		}
		if out.declSeen[n.Declaration.ID] {
			return
		}
		out.declSeen[n.Declaration.ID] = true
		out.Declarations = append(out.Declarations, Declaration{
			ID:          itoa(n.Declaration.ID),
			Symbol:      n.Symbol.Name,
			FileID:      itoa(n.File.ID),
			ProjectID:   itoa(n.Project.ID),
			SymbolType:  string(n.Declaration.Kind),
			StartOffset: n.Declaration.StartByte,
			EndOffset:   n.Declaration.EndByte,
		})
		files[n.File.ID] = File{FileID: itoa(n.File.ID), Path: n.File.FilesystemPath, ProjectID: itoa(n.Project.ID)}
	}

	for id, st := range ec.States {
		if id == ec.Tree.Root || st.Selection == nil {
			continue
		}
		for _, n := range st.Selection.Nodes {
			addNode(n)
		}
	}

	var edgeOut []Edge
	for _, e := range edges {
		edgeOut = append(edgeOut, Edge{
			ID:              itoa(e.From.Symbol.ID) + "-" + itoa(e.To.Symbol.ID),
			From:            itoa(e.From.Symbol.ID),
			To:              itoa(e.To.Symbol.ID),
			FromFile:        itoa(e.Occurrence.FileID),
			FromProjectID:   itoa(e.Occurrence.ProjectID),
			FromOffsetStart: e.Occurrence.StartOffset,
			FromOffsetEnd:   e.Occurrence.EndOffset,
		})
	}

	result := &Result{Edges: edgeOut, Warnings: warnings}

	nodeIDs := make([]int32, 0, len(nodes))
	for id := range nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	for _, id := range nodeIDs {
		n := nodes[id]
		sort.Slice(n.Declarations, func(i, j int) bool { return n.Declarations[i].ID < n.Declarations[j].ID })
		result.Nodes = append(result.Nodes, *n)
	}

	fileIDs := make([]int32, 0, len(files))
	for id := range files {
		fileIDs = append(fileIDs, id)
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })
	for _, id := range fileIDs {
		result.Files = append(result.Files, files[id])
	}

	sort.SliceStable(result.Edges, func(i, j int) bool {
		if result.Edges[i].From != result.Edges[j].From {
			return result.Edges[i].From < result.Edges[j].From
		}
		return result.Edges[i].To < result.Edges[j].To
	})

	if result.Nodes == nil {
		result.Nodes = []Node{}
	}
	if result.Edges == nil {
		result.Edges = []Edge{}
	}
	if result.Files == nil {
		result.Files = []File{}
	}
	if result.Warnings == nil {
		result.Warnings = []*queryerr.Error{}
	}

	return result
}

func itoa(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}
