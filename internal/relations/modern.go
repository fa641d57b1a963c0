package relations

import (
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

// ModernAdapter unifies relations declared through define_relations().
// All information is read off live declaration objects; no source parsing
// is involved.
type ModernAdapter struct {
	entries []*sdl.RelationsEntry
	byTable map[string]*sdl.RelationsEntry
}

// NewModernAdapter creates an adapter over relation-table entries.
func NewModernAdapter(entries []*sdl.RelationsEntry) *ModernAdapter {
	byTable := make(map[string]*sdl.RelationsEntry, len(entries))
	for _, e := range entries {
		byTable[e.Table.Name] = e
	}
	return &ModernAdapter{entries: entries, byTable: byTable}
}

// Extract returns the unified relations.
func (a *ModernAdapter) Extract() ([]UnifiedRelation, error) {
	return unify(a), nil
}

// pairs collects the authoritative forward declarations. Multi-record
// relations and auto-generated inverses carry no authoritative join
// information and are skipped.
func (a *ModernAdapter) pairs() []joinPair {
	var out []joinPair
	for _, e := range a.entries {
		for _, r := range e.Relations() {
			if r.Kind != sdl.KindOne || r.Reversed {
				continue
			}
			if r.TargetTable == nil || len(r.SourceColumns) == 0 ||
				len(r.SourceColumns) != len(r.TargetColumns) {
				continue
			}
			out = append(out, joinPair{
				SourceTable:   e.Table.Name,
				SourceColumns: dbNames(r.SourceColumns),
				TargetTable:   r.TargetTable.Name,
				TargetColumns: dbNames(r.TargetColumns),
				OnDelete:      r.OnDelete,
				OnUpdate:      r.OnUpdate,
			})
		}
	}
	return out
}

// hasInverse searches the target table's own entry for a single-record
// declaration back to the source whose column handles are the exact
// reverse pairing.
func (a *ModernAdapter) hasInverse(p joinPair) bool {
	entry, ok := a.byTable[p.TargetTable]
	if !ok {
		return false
	}
	for _, r := range entry.Relations() {
		if r.Kind != sdl.KindOne || r.Reversed || r.TargetTable == nil {
			continue
		}
		if r.TargetTable.Name != p.SourceTable {
			continue
		}
		if sameColumns(dbNames(r.SourceColumns), p.TargetColumns) &&
			sameColumns(dbNames(r.TargetColumns), p.SourceColumns) {
			return true
		}
	}
	return false
}

// dbNames reads the database names off column handles.
func dbNames(cols []*sdl.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.DBName
	}
	return names
}
