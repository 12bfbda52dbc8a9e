// Package catalog holds the immutable clinical knowledge base: term-to-code
// bundles for diagnoses, the procedure term list and the code exclusion table.
// A catalog is built once and never mutated; lookups are index-backed so a
// note token resolves in O(1) instead of rescanning every synonym list.
package catalog

import (
	"fmt"
	"strings"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Catalog implements domain.TermCatalog over in-memory tables.
type Catalog struct {
	entries    []domain.TermEntry
	procedures []domain.ProcedureEntry
	exclusions map[string][]string

	synonymIndex   map[string]int // lower-cased synonym -> entries index
	diagnosisIndex map[string]int // diagnosis code -> entries index
}

// New builds a catalog from the given tables. Synonym and code indexes are
// derived here; the input slices are copied so later mutation by the caller
// cannot leak into the catalog.
func New(entries []domain.TermEntry, procedures []domain.ProcedureEntry, exclusions map[string][]string) (*Catalog, error) {
	c := &Catalog{
		entries:        make([]domain.TermEntry, len(entries)),
		procedures:     make([]domain.ProcedureEntry, len(procedures)),
		exclusions:     make(map[string][]string, len(exclusions)),
		synonymIndex:   make(map[string]int),
		diagnosisIndex: make(map[string]int),
	}
	copy(c.entries, entries)
	copy(c.procedures, procedures)
	for code, excluded := range exclusions {
		c.exclusions[code] = append([]string(nil), excluded...)
	}

	for i, e := range c.entries {
		if e.Term == "" {
			return nil, fmt.Errorf("catalog entry %d: term is required", i)
		}
		if e.Diagnosis.Code == "" {
			return nil, fmt.Errorf("catalog entry %q: diagnosis code is required", e.Term)
		}
		if e.Diagnosis.BaseConfidence <= 0 || e.Diagnosis.BaseConfidence > 1 {
			return nil, fmt.Errorf("catalog entry %q: base confidence %.3f out of (0,1]", e.Term, e.Diagnosis.BaseConfidence)
		}
		if r := e.Inpatient.SOIRange; r != [2]int{} && (r[0] < 1 || r[1] > 4 || r[0] > r[1]) {
			return nil, fmt.Errorf("catalog entry %q: SOI range %v outside the 1-4 scale", e.Term, r)
		}
		for _, syn := range e.Synonyms {
			key := strings.ToLower(strings.TrimSpace(syn))
			if key == "" {
				continue
			}
			if prev, dup := c.synonymIndex[key]; dup && prev != i {
				return nil, fmt.Errorf("catalog synonym %q bound to both %q and %q", syn, c.entries[prev].Term, e.Term)
			}
			c.synonymIndex[key] = i
		}
		c.diagnosisIndex[e.Diagnosis.Code] = i
	}

	for i, p := range c.procedures {
		if p.Term == "" || p.Code == "" {
			return nil, fmt.Errorf("procedure entry %d: term and code are required", i)
		}
	}

	return c, nil
}

// Entries returns every diagnosis term entry.
func (c *Catalog) Entries() []domain.TermEntry {
	out := make([]domain.TermEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Procedures returns every procedure term entry.
func (c *Catalog) Procedures() []domain.ProcedureEntry {
	out := make([]domain.ProcedureEntry, len(c.procedures))
	copy(out, c.procedures)
	return out
}

// LookupSynonym resolves an exact synonym string to its term entry.
func (c *Catalog) LookupSynonym(synonym string) (domain.TermEntry, bool) {
	i, ok := c.synonymIndex[strings.ToLower(strings.TrimSpace(synonym))]
	if !ok {
		return domain.TermEntry{}, false
	}
	return c.entries[i], true
}

// LookupDiagnosisCode resolves a diagnosis code back to its term entry.
func (c *Catalog) LookupDiagnosisCode(code string) (domain.TermEntry, bool) {
	i, ok := c.diagnosisIndex[code]
	if !ok {
		return domain.TermEntry{}, false
	}
	return c.entries[i], true
}

// Exclusions maps a diagnosis code to the set of codes it renders invalid.
func (c *Catalog) Exclusions() map[string][]string {
	out := make(map[string][]string, len(c.exclusions))
	for code, excluded := range c.exclusions {
		out[code] = append([]string(nil), excluded...)
	}
	return out
}
