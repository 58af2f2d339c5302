package models

import "slices"

// System is one entry of the fixed checklist catalog. Values are the
// canonical Dutch names shown to operators and stored verbatim.
type System string

const (
	SystemEmail      System = "Email"
	SystemCRM        System = "CRM / Klantbestand"
	SystemFinance    System = "Financieel / Facturen"
	SystemHR         System = "HR / Personeelsadmin"
	SystemWebsite    System = "Website / Analytics"
	SystemNewsletter System = "Nieuwsbrief"
	SystemCloud      System = "Cloud opslag"
	SystemOther      System = "Overig"
)

var catalog = []System{
	SystemEmail,
	SystemCRM,
	SystemFinance,
	SystemHR,
	SystemWebsite,
	SystemNewsletter,
	SystemCloud,
	SystemOther,
}

var catalogIndex = func() map[System]int {
	idx := make(map[System]int, len(catalog))
	for i, s := range catalog {
		idx[s] = i
	}
	return idx
}()

// Catalog returns the systems in display order.
func Catalog() []System {
	return append([]System(nil), catalog...)
}

// CatalogSize is the denominator of Completeness.
func CatalogSize() int { return len(catalog) }

// ParseSystem validates an external system name. Matching is exact.
func ParseSystem(s string) (System, error) {
	if _, ok := catalogIndex[System(s)]; !ok {
		return "", &ValidationError{Kind: KindUnknownSystem, Value: s}
	}
	return System(s), nil
}

func (s System) IsValid() bool {
	_, ok := catalogIndex[s]
	return ok
}

func (s System) String() string { return string(s) }

// ToggleSystem flips membership of system in CheckedSystems and reports
// whether it is now checked. CheckedSystems stays in catalog order.
func (r *AccessRequest) ToggleSystem(system System) (bool, error) {
	if !system.IsValid() {
		return false, &ValidationError{Kind: KindUnknownSystem, Value: string(system)}
	}

	for i, s := range r.CheckedSystems {
		if s == system {
			r.CheckedSystems = append(r.CheckedSystems[:i:i], r.CheckedSystems[i+1:]...)
			return false, nil
		}
	}

	r.CheckedSystems = sortByCatalog(append(slices.Clone(r.CheckedSystems), system))
	return true, nil
}

// HasChecked reports whether system is in the checklist.
func (r *AccessRequest) HasChecked(system System) bool {
	return slices.Contains(r.CheckedSystems, system)
}

// Completeness returns (checked, total). It never gates a status change.
func (r *AccessRequest) Completeness() (checked, total int) {
	return len(r.CheckedSystems), len(catalog)
}

// sortByCatalog orders systems by catalog position in place.
func sortByCatalog(systems []System) []System {
	slices.SortFunc(systems, func(a, b System) int {
		return catalogIndex[a] - catalogIndex[b]
	})
	return systems
}

// NormalizeSystems validates stored names, drops duplicates and returns them
// in catalog order. Used by stores when loading rows.
func NormalizeSystems(names []string) ([]System, error) {
	seen := make(map[System]struct{}, len(names))
	out := make([]System, 0, len(names))
	for _, n := range names {
		s, err := ParseSystem(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return sortByCatalog(out), nil
}
