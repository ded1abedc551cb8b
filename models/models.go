// Package models defines the GORM-mapped row types for the index oracle.
// These are the read-only entities described in spec §3: Project, Module,
// File, Symbol, Declaration and Reference. Query execution never mutates
// them; ingestion (writing them) is a collaborator concern outside this
// repository's scope.
package models

import (
	"gorm.io/datatypes"
)

// Project is the top-level container a query runs against. Queries never
// span more than one project (spec §1 Non-goals).
type Project struct {
	ID       int32  `gorm:"primaryKey"`
	Name     string `gorm:"type:varchar(255);not null;index"`
	RootPath string `gorm:"type:text"`
}

// Module groups files by package/namespace within a project.
type Module struct {
	ID        int32  `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(255);not null;index"`
	ProjectID int32  `gorm:"not null;index"`
}

// File is a single source file known to the index.
type File struct {
	ID             int32  `gorm:"primaryKey"`
	ProjectID      int32  `gorm:"not null;index"`
	ModuleID       *int32 `gorm:"index"`
	ModulePath     string `gorm:"type:text"`
	FilesystemPath string `gorm:"type:text;not null"`
	Filetype       string `gorm:"type:varchar(50)"`
	ContentHash    string `gorm:"type:varchar(64)"`
}

// SymbolScope distinguishes module-private from cross-module symbols
// (spec §3 invariant 2).
type SymbolScope string

const (
	ScopeLocal  SymbolScope = "local"
	ScopeGlobal SymbolScope = "global"
)

// Symbol is a named entity a declaration can bind to. SymbolPath is the
// dot-joined normalization described in the glossary, maintained at write
// time by ingestion and trusted read-only here.
type Symbol struct {
	ID         int32       `gorm:"primaryKey"`
	Name       string      `gorm:"type:varchar(255);not null"`
	SymbolPath string      `gorm:"type:text;not null;index"`
	ModuleID   int32       `gorm:"not null;index"`
	Scope      SymbolScope `gorm:"type:varchar(10);not null"`
}

// DeclarationKind distinguishes a full definition from a forward
// declaration (spec glossary).
type DeclarationKind string

const (
	KindDefinition  DeclarationKind = "definition"
	KindDeclaration DeclarationKind = "declaration"
)

// Declaration names one point at which a symbol is written. OffsetRange is
// stored as two columns rather than a composite type for portability
// across the sqlite/libsql/postgres dialects this oracle supports.
type Declaration struct {
	ID         int32           `gorm:"primaryKey"`
	SymbolID   int32           `gorm:"not null;index"`
	FileID     int32           `gorm:"not null;index"`
	Kind       DeclarationKind `gorm:"type:varchar(20);not null"`
	StartByte  int64           `gorm:"not null"`
	EndByte    int64           `gorm:"not null"`
	Attributes datatypes.JSON  `gorm:"type:jsonb"`
}

// Reference is a caller->callee edge as recorded by ingestion: a call site
// at (FromFile, FromStartByte..FromEndByte) resolving to ToSymbol. The
// solver resolves this into a (from_declaration, to_declaration) pair by
// matching FromFile/offsets against a Declaration's own offset range
// (spec §3: "Resolved at solve time").
type Reference struct {
	ID            int32 `gorm:"primaryKey"`
	ToSymbolID    int32 `gorm:"not null;index"`
	FromFileID    int32 `gorm:"not null;index"`
	FromStartByte int64 `gorm:"not null"`
	FromEndByte   int64 `gorm:"not null"`
}

func (Project) TableName() string     { return "projects" }
func (Module) TableName() string      { return "modules" }
func (File) TableName() string        { return "files" }
func (Symbol) TableName() string      { return "symbols" }
func (Declaration) TableName() string { return "declarations" }
func (Reference) TableName() string   { return "references" }
