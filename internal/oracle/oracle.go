package oracle

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/oxhq/askl/models"
)

// Store is the index oracle's read surface (spec §3/§4.3): a mixin-
// composable node search, a declaration-id re-resolution used by deriver
// verbs that only produced ids, and raw source-range retrieval for the
// §6.2 "source" operation.
type Store interface {
	// Find returns every declaration matching all of mixins, together with
	// the callers (Parents) and callees (Children) of each match.
	Find(mixins ...Mixin) (*Selection, error)
	// FindByName is Find narrowed to an exact symbol-name match, the
	// lookup behind the @forced verb (the plain string sugar uses Find
	// with a CompoundNameMixin instead).
	FindByName(name string, mixins ...Mixin) (*Selection, error)
	// FindByDeclarationIDs re-resolves a fixed set of declaration ids back
	// into a full Selection, used by a deriver verb (e.g. the default
	// children deriver) that only has ids on hand.
	FindByDeclarationIDs(ids []int32) (*Selection, error)
	// ReadSource returns the bytes of fileID in [startByte, endByte).
	ReadSource(fileID int32, startByte, endByte int64) (string, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore adapts a migrated GORM connection (db.Connect) into a Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// nodeRow is the flat scan target for the five-table declaration join.
type nodeRow struct {
	DeclID      int32
	SymbolID    int32
	SymbolName  string
	SymbolPath  string
	SymbolScope string
	DeclKind    string
	StartByte   int64
	EndByte     int64
	Attributes  []byte
	FileID      int32
	FilePath    string
	Filetype    string
	ContentHash string
	ModuleID    int32
	ModuleName  string
	ProjectID   int32
	ProjectName string
	RootPath    string
}

func (s *gormStore) nodesQuery() *gorm.DB {
	return s.db.Table("declarations").
		Select(`declarations.id AS decl_id, declarations.symbol_id AS symbol_id,
			declarations.kind AS decl_kind, declarations.start_byte AS start_byte,
			declarations.end_byte AS end_byte, declarations.attributes AS attributes,
			symbols.name AS symbol_name, symbols.symbol_path AS symbol_path,
			symbols.scope AS symbol_scope,
			files.id AS file_id, files.filesystem_path AS file_path,
			files.filetype AS filetype, files.content_hash AS content_hash,
			modules.id AS module_id, modules.name AS module_name,
			projects.id AS project_id, projects.name AS project_name,
			projects.root_path AS root_path`).
		Joins("JOIN symbols ON symbols.id = declarations.symbol_id").
		Joins("JOIN files ON files.id = declarations.file_id").
		Joins("JOIN modules ON modules.id = symbols.module_id").
		Joins("JOIN projects ON projects.id = modules.project_id")
}

func hydrateNode(r nodeRow) SelectionNode {
	return SelectionNode{
		Symbol: models.Symbol{
			ID: r.SymbolID, Name: r.SymbolName, SymbolPath: r.SymbolPath,
			ModuleID: r.ModuleID, Scope: models.SymbolScope(r.SymbolScope),
		},
		Declaration: models.Declaration{
			ID: r.DeclID, SymbolID: r.SymbolID, FileID: r.FileID,
			Kind: models.DeclarationKind(r.DeclKind), StartByte: r.StartByte, EndByte: r.EndByte,
			Attributes: r.Attributes,
		},
		Module:  models.Module{ID: r.ModuleID, Name: r.ModuleName, ProjectID: r.ProjectID},
		File:    models.File{ID: r.FileID, ProjectID: r.ProjectID, FilesystemPath: r.FilePath, Filetype: r.Filetype, ContentHash: r.ContentHash},
		Project: models.Project{ID: r.ProjectID, Name: r.ProjectName, RootPath: r.RootPath},
	}
}

// Find implements Store.Find: apply every mixin's FilterNodes to the join,
// scan the candidate rows, drop any that fail a mixin's MatchesNode (the
// ordered-subset checks SQL can't express), then eagerly resolve
// Parents/Children for every matched node, so a selection's neighbors
// arrive with its nodes in the same call (the default derivers and edge
// enumeration still re-resolve ids through FindByDeclarationIDs).
func (s *gormStore) Find(mixins ...Mixin) (*Selection, error) {
	q := s.nodesQuery()
	for _, m := range mixins {
		q = m.FilterNodes(q)
	}

	var rows []nodeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("oracle: find nodes: %w", err)
	}

	sel := New()
	symbolIDs := make([]int32, 0, len(rows))
	declIDs := make([]int32, 0, len(rows))
	for _, r := range rows {
		keep := true
		for _, m := range mixins {
			if !m.MatchesNode(r) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		sel.Nodes = append(sel.Nodes, hydrateNode(r))
		symbolIDs = append(symbolIDs, r.SymbolID)
		declIDs = append(declIDs, r.DeclID)
	}

	parents, err := s.resolveParents(symbolIDs, mixins)
	if err != nil {
		return nil, err
	}
	sel.Parents = parents

	children, err := s.resolveChildren(declIDs, mixins)
	if err != nil {
		return nil, err
	}
	sel.Children = children

	return sel, nil
}

func (s *gormStore) FindByName(name string, mixins ...Mixin) (*Selection, error) {
	return s.Find(append([]Mixin{NameMixin{Name: name}}, mixins...)...)
}

func (s *gormStore) FindByDeclarationIDs(ids []int32) (*Selection, error) {
	if len(ids) == 0 {
		return New(), nil
	}
	return s.Find(DeclarationIDMixin{IDs: ids})
}

// resolveParents finds every Reference targeting one of symbolIDs,
// resolves its call site to the enclosing caller declaration, and applies
// every mixin's MatchesParent predicate.
func (s *gormStore) resolveParents(symbolIDs []int32, mixins []Mixin) ([]ParentReference, error) {
	if len(symbolIDs) == 0 {
		return nil, nil
	}

	var refs []models.Reference
	if err := s.db.Where("to_symbol_id IN ?", symbolIDs).Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("oracle: resolve parents: %w", err)
	}

	calleeCache := map[int32]*nodeRow{}
	out := make([]ParentReference, 0, len(refs))
	for _, ref := range refs {
		callerRow, ok, err := s.enclosingDeclaration(ref.FromFileID, ref.FromStartByte, ref.FromEndByte)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		calleeRow, ok := calleeCache[ref.ToSymbolID]
		if !ok {
			r, found, err := s.representativeDeclaration(ref.ToSymbolID)
			if err != nil {
				return nil, err
			}
			if !found {
				calleeCache[ref.ToSymbolID] = nil
				continue
			}
			calleeRow = r
			calleeCache[ref.ToSymbolID] = r
		}
		if calleeRow == nil {
			continue
		}

		p := ParentReference{
			FromDeclaration: hydrateNode(*callerRow).Declaration,
			FromSymbol:      hydrateNode(*callerRow).Symbol,
			FromModuleName:  callerRow.ModuleName,
			ToDeclaration:   hydrateNode(*calleeRow).Declaration,
			ToSymbol:        hydrateNode(*calleeRow).Symbol,
			ReferenceID:     ref.ID,
			Occurrence: Occurrence{
				FileID: ref.FromFileID, ProjectID: callerRow.ProjectID,
				StartOffset: ref.FromStartByte, EndOffset: ref.FromEndByte,
			},
		}

		keep := true
		for _, m := range mixins {
			if !m.MatchesParent(p) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, p)
		}
	}
	return out, nil
}

// resolveChildren finds every Reference whose call site falls inside one
// of declIDs, resolves the callee declaration from its target symbol, and
// applies every mixin's MatchesChildren predicate.
func (s *gormStore) resolveChildren(declIDs []int32, mixins []Mixin) ([]ChildReference, error) {
	if len(declIDs) == 0 {
		return nil, nil
	}

	var callers []nodeRow
	q := s.nodesQuery().Where("declarations.id IN ?", declIDs)
	if err := q.Find(&callers).Error; err != nil {
		return nil, fmt.Errorf("oracle: resolve children: load callers: %w", err)
	}

	out := make([]ChildReference, 0, len(callers))
	calleeCache := map[int32]*nodeRow{}
	for _, caller := range callers {
		var refs []models.Reference
		err := s.db.Where(
			"from_file_id = ? AND from_start_byte >= ? AND from_end_byte <= ?",
			caller.FileID, caller.StartByte, caller.EndByte,
		).Find(&refs).Error
		if err != nil {
			return nil, fmt.Errorf("oracle: resolve children: %w", err)
		}

		for _, ref := range refs {
			calleeRow, ok := calleeCache[ref.ToSymbolID]
			if !ok {
				r, found, err := s.representativeDeclaration(ref.ToSymbolID)
				if err != nil {
					return nil, err
				}
				if !found {
					calleeCache[ref.ToSymbolID] = nil
					continue
				}
				calleeRow = r
				calleeCache[ref.ToSymbolID] = r
			}
			if calleeRow == nil {
				continue
			}

			c := ChildReference{
				FromDeclaration: hydrateNode(caller).Declaration,
				FromSymbol:      hydrateNode(caller).Symbol,
				ToDeclaration:   hydrateNode(*calleeRow).Declaration,
				ToSymbol:        hydrateNode(*calleeRow).Symbol,
				ToModuleName:    calleeRow.ModuleName,
				ReferenceID:     ref.ID,
				Occurrence: Occurrence{
					FileID: ref.FromFileID, ProjectID: caller.ProjectID,
					StartOffset: ref.FromStartByte, EndOffset: ref.FromEndByte,
				},
			}

			keep := true
			for _, m := range mixins {
				if !m.MatchesChildren(c) {
					keep = false
					break
				}
			}
			if keep {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// enclosingDeclaration finds the innermost declaration in fileID whose
// byte range contains [start, end) — the join a Reference's raw call-site
// offsets need to become a "from_declaration" (spec §3: "Resolved at
// solve time" rather than stored as a direct foreign key).
func (s *gormStore) enclosingDeclaration(fileID int32, start, end int64) (*nodeRow, bool, error) {
	var row nodeRow
	err := s.nodesQuery().
		Where("declarations.file_id = ? AND declarations.start_byte <= ? AND declarations.end_byte >= ?", fileID, start, end).
		Order("declarations.end_byte - declarations.start_byte ASC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, false, fmt.Errorf("oracle: enclosing declaration: %w", err)
	}
	if row.DeclID == 0 {
		return nil, false, nil
	}
	return &row, true, nil
}

// representativeDeclaration picks the declaration that best represents a
// symbol when a Reference only names the symbol (ToSymbolID), not a
// specific declaration: a full Definition if one exists, else the
// lowest-id Declaration row.
func (s *gormStore) representativeDeclaration(symbolID int32) (*nodeRow, bool, error) {
	var row nodeRow
	err := s.nodesQuery().
		Where("declarations.symbol_id = ?", symbolID).
		Order("CASE WHEN declarations.kind = 'definition' THEN 0 ELSE 1 END, declarations.id ASC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, false, fmt.Errorf("oracle: representative declaration: %w", err)
	}
	if row.DeclID == 0 {
		return nil, false, nil
	}
	return &row, true, nil
}

// ReadSource reads fileID's filesystem_path and slices [startByte, endByte).
func (s *gormStore) ReadSource(fileID int32, startByte, endByte int64) (string, error) {
	var file models.File
	if err := s.db.First(&file, fileID).Error; err != nil {
		return "", fmt.Errorf("oracle: read source: file %d: %w", fileID, err)
	}

	data, err := os.ReadFile(file.FilesystemPath)
	if err != nil {
		return "", fmt.Errorf("oracle: read source: %w", err)
	}

	if startByte < 0 || endByte > int64(len(data)) || startByte > endByte {
		return "", fmt.Errorf("oracle: read source: offset range [%d,%d) out of bounds for %s (%d bytes)", startByte, endByte, file.FilesystemPath, len(data))
	}

	return string(data[startByte:endByte]), nil
}
