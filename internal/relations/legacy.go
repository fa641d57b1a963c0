package relations

import (
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/parser"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

// LegacyAdapter unifies relations declared through the legacy relations()
// registration API. Join information comes from the parsed source syntax;
// the live tables only supply the identifier and column name mappings.
type LegacyAdapter struct {
	idents map[string]string // declaration identifier -> database table name
	tables map[string]*sdl.Table
	parsed []parser.ParsedRelation

	colMaps  map[string]map[string]string // per-table property -> column name, memoized
	resolved []joinPair
}

// NewLegacyAdapter creates an adapter over the parsed relation calls.
func NewLegacyAdapter(tables []*sdl.Table, idents map[string]string, parsed []parser.ParsedRelation) *LegacyAdapter {
	byName := make(map[string]*sdl.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	return &LegacyAdapter{
		idents:  idents,
		tables:  byName,
		parsed:  parsed,
		colMaps: make(map[string]map[string]string),
	}
}

// Extract returns the unified relations.
func (a *LegacyAdapter) Extract() ([]UnifiedRelation, error) {
	return unify(a), nil
}

// pairs resolves every single-record declaration with join information
// into database-name space. Unresolvable table references are skipped
// silently; unmapped property names pass through unchanged.
func (a *LegacyAdapter) pairs() []joinPair {
	if a.resolved != nil {
		return a.resolved
	}
	a.resolved = make([]joinPair, 0, len(a.parsed))
	for _, r := range a.parsed {
		if r.Kind != parser.KindSingle || !r.HasJoins() {
			continue
		}
		srcTable, ok := a.idents[r.SourceTable]
		if !ok {
			continue
		}
		tgtTable, ok := a.idents[r.TargetTable]
		if !ok {
			continue
		}
		a.resolved = append(a.resolved, joinPair{
			SourceTable:   srcTable,
			SourceColumns: a.translate(srcTable, r.JoinFromColumns),
			TargetTable:   tgtTable,
			TargetColumns: a.translate(tgtTable, r.JoinToColumns),
		})
	}
	return a.resolved
}

// hasInverse searches the resolved declarations for the exact reversed
// pairing of p. The comparison is order-sensitive.
func (a *LegacyAdapter) hasInverse(p joinPair) bool {
	for _, q := range a.pairs() {
		if q.SourceTable == p.TargetTable && q.TargetTable == p.SourceTable &&
			sameColumns(q.SourceColumns, p.TargetColumns) &&
			sameColumns(q.TargetColumns, p.SourceColumns) {
			return true
		}
	}
	return false
}

// translate maps property names to database column names for one table.
func (a *LegacyAdapter) translate(tableName string, props []string) []string {
	m, ok := a.colMaps[tableName]
	if !ok {
		if t := a.tables[tableName]; t != nil {
			m = t.ColumnNameMap()
		} else {
			m = map[string]string{}
		}
		a.colMaps[tableName] = m
	}
	out := make([]string, len(props))
	for i, p := range props {
		if db, ok := m[p]; ok {
			out[i] = db
		} else {
			out[i] = p
		}
	}
	return out
}
