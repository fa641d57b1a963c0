// Package relations normalizes the two relation declaration APIs into
// one canonical shape. The legacy adapter recovers join information from
// parsed source syntax, the modern adapter reads it off live declaration
// objects; both share the same dedup and cardinality algorithm.
package relations

import (
	"strings"
)

// Cardinality classifies a unified relation.
type Cardinality string

// Cardinality values. OneToMany is the rendered inverse of ManyToOne and
// is used by formatters, never emitted by the adapters themselves.
const (
	OneToOne  Cardinality = "one-to-one"
	ManyToOne Cardinality = "many-to-one"
	OneToMany Cardinality = "one-to-many"
)

// UnifiedRelation is the canonical relation shape consumed by the schema
// builder. All names are database names.
type UnifiedRelation struct {
	SourceTable   string
	SourceColumns []string
	TargetTable   string
	TargetColumns []string
	Cardinality   Cardinality
	OnDelete      string
	OnUpdate      string
}

// Extractor produces unified relations from one declaration API.
type Extractor interface {
	Extract() ([]UnifiedRelation, error)
}

// joinPair is a fully resolved candidate relation in database-name space.
type joinPair struct {
	SourceTable   string
	SourceColumns []string
	TargetTable   string
	TargetColumns []string
	OnDelete      string
	OnUpdate      string
}

// resolver supplies the adapter-specific halves of the shared algorithm:
// the candidate pairs and the reverse-declaration lookup.
type resolver interface {
	pairs() []joinPair
	hasInverse(p joinPair) bool
}

// unify applies the order-sensitive dedup and the bidirectional-match
// cardinality classification shared by both adapters. A relation declared
// from both sides collapses to one record; an exact reversed counterpart
// upgrades it to one-to-one, otherwise many-to-one is assumed.
func unify(r resolver) []UnifiedRelation {
	seen := make(map[string]struct{})
	var out []UnifiedRelation
	for _, p := range r.pairs() {
		fwd := joinKey(p.SourceTable, p.SourceColumns, p.TargetTable, p.TargetColumns)
		rev := joinKey(p.TargetTable, p.TargetColumns, p.SourceTable, p.SourceColumns)
		if _, dup := seen[fwd]; dup {
			continue
		}
		if _, dup := seen[rev]; dup {
			continue
		}
		seen[fwd] = struct{}{}

		cardinality := ManyToOne
		if r.hasInverse(p) {
			cardinality = OneToOne
		}
		out = append(out, UnifiedRelation{
			SourceTable:   p.SourceTable,
			SourceColumns: p.SourceColumns,
			TargetTable:   p.TargetTable,
			TargetColumns: p.TargetColumns,
			Cardinality:   cardinality,
			OnDelete:      p.OnDelete,
			OnUpdate:      p.OnUpdate,
		})
	}
	return out
}

// joinKey builds the order-sensitive dedup key for a directed join.
func joinKey(srcTable string, srcCols []string, tgtTable string, tgtCols []string) string {
	return srcTable + "(" + strings.Join(srcCols, ",") + ")->" + tgtTable + "(" + strings.Join(tgtCols, ",") + ")"
}

// sameColumns compares column lists order-sensitively. Canonicalizing the
// order before comparing would accept reversed declarations that list
// columns differently, but it would also risk false positives on tables
// with several candidate join pairs, so exact order is required.
func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
