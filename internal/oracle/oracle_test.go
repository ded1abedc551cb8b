package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oxhq/askl/db"
	"github.com/oxhq/askl/models"
)

// newTestStore seeds the S1-S8 fixture graph used throughout the solver
// package: declarations 91="a", 92="b", 942="main", with references
// a->b, main->a, main->b.
func newTestStore(t *testing.T) Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	require.NoError(t, gdb.Create(&models.Project{ID: 1, Name: "proj"}).Error)
	require.NoError(t, gdb.Create(&models.Module{ID: 1, Name: "pkg", ProjectID: 1}).Error)
	require.NoError(t, gdb.Create(&models.File{ID: 1, ProjectID: 1, FilesystemPath: "main.go"}).Error)

	require.NoError(t, gdb.Create(&models.Symbol{ID: 91, Name: "a", SymbolPath: "a", ModuleID: 1, Scope: models.ScopeGlobal}).Error)
	require.NoError(t, gdb.Create(&models.Symbol{ID: 92, Name: "b", SymbolPath: "b", ModuleID: 1, Scope: models.ScopeGlobal}).Error)
	require.NoError(t, gdb.Create(&models.Symbol{ID: 942, Name: "main", SymbolPath: "main", ModuleID: 1, Scope: models.ScopeGlobal}).Error)

	require.NoError(t, gdb.Create(&models.Declaration{ID: 91, SymbolID: 91, FileID: 1, Kind: models.KindDefinition, StartByte: 0, EndByte: 10}).Error)
	require.NoError(t, gdb.Create(&models.Declaration{ID: 92, SymbolID: 92, FileID: 1, Kind: models.KindDefinition, StartByte: 10, EndByte: 20}).Error)
	require.NoError(t, gdb.Create(&models.Declaration{ID: 942, SymbolID: 942, FileID: 1, Kind: models.KindDefinition, StartByte: 20, EndByte: 40}).Error)

	// a calls b: call site inside a's byte range (0..10).
	require.NoError(t, gdb.Create(&models.Reference{ID: 1, ToSymbolID: 92, FromFileID: 1, FromStartByte: 2, FromEndByte: 3}).Error)
	// main calls a: call site inside main's byte range (20..40).
	require.NoError(t, gdb.Create(&models.Reference{ID: 2, ToSymbolID: 91, FromFileID: 1, FromStartByte: 22, FromEndByte: 23}).Error)
	// main calls b.
	require.NoError(t, gdb.Create(&models.Reference{ID: 3, ToSymbolID: 92, FromFileID: 1, FromStartByte: 25, FromEndByte: 26}).Error)

	return NewStore(gdb)
}

func TestStore_FindByName(t *testing.T) {
	store := newTestStore(t)

	sel, err := store.FindByName("a")
	require.NoError(t, err)
	require.Len(t, sel.Nodes, 1)
	require.Equal(t, int32(91), sel.Nodes[0].Declaration.ID)

	// a is called by main.
	require.Len(t, sel.Parents, 1)
	require.Equal(t, int32(942), sel.Parents[0].FromDeclaration.ID)
	require.Equal(t, int32(91), sel.Parents[0].ToDeclaration.ID)

	// a calls b.
	require.Len(t, sel.Children, 1)
	require.Equal(t, int32(91), sel.Children[0].FromDeclaration.ID)
	require.Equal(t, int32(92), sel.Children[0].ToDeclaration.ID)
}

func TestStore_FindByName_NoMatch(t *testing.T) {
	store := newTestStore(t)

	sel, err := store.FindByName("nonexistent")
	require.NoError(t, err)
	require.Empty(t, sel.Nodes)
	require.Empty(t, sel.Parents)
	require.Empty(t, sel.Children)
}

func TestStore_FindByDeclarationIDs(t *testing.T) {
	store := newTestStore(t)

	sel, err := store.FindByDeclarationIDs([]int32{942})
	require.NoError(t, err)
	require.Len(t, sel.Nodes, 1)
	require.Equal(t, int32(942), sel.Nodes[0].Declaration.ID)

	// main calls both a and b.
	require.Len(t, sel.Children, 2)

	// main has no callers.
	require.Empty(t, sel.Parents)
}

func TestStore_FindByDeclarationIDs_Empty(t *testing.T) {
	store := newTestStore(t)

	sel, err := store.FindByDeclarationIDs(nil)
	require.NoError(t, err)
	require.Empty(t, sel.Nodes)
}

func TestStore_Find_WithMixin(t *testing.T) {
	store := newTestStore(t)

	sel, err := store.Find(DeclarationIDMixin{IDs: []int32{91, 92}})
	require.NoError(t, err)
	require.Len(t, sel.Nodes, 2)

	// a->b, main->a, main->b all target a or b.
	require.Len(t, sel.Parents, 3)
}
