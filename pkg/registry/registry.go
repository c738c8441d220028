// Package registry maps declared function names onto the known query
// operations. A Registry is built once from the system catalogue and never
// changes afterwards, so concurrent readers need no locking.
package registry

import (
	"sort"

	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"
	"erp-assistant/internal/queries"
)

const (
	reasonUnknownFunction   = "unknown function"
	reasonDuplicateFunction = "function already registered"
)

type Registry struct {
	entries    map[string]Entry
	byLabel    map[string]models.SystemInfo
	systems    []models.SystemInfo
	unresolved []UnresolvedSystem
}

// Build resolves every SystemInfo against catalog. Names the catalog does
// not know are skipped with a warning, and a function declared by several
// systems belongs to the first one. Build never fails.
func Build(systemInfos []models.SystemInfo, catalog queries.Catalog, log logger.Logger) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		byLabel: make(map[string]models.SystemInfo, len(systemInfos)),
		systems: append([]models.SystemInfo(nil), systemInfos...),
	}

	for _, info := range systemInfos {
		if _, seen := r.byLabel[info.SystemName]; !seen {
			r.byLabel[info.SystemName] = info
		}

		name := info.DataQueryFunctionName
		op, ok := catalog.Lookup(name)
		if !ok {
			log.Warn("skipping system with unknown query function", map[string]interface{}{
				"systemName":   info.SystemName,
				"functionName": name,
			})
			r.unresolved = append(r.unresolved, UnresolvedSystem{SystemName: info.SystemName, FunctionName: name, Reason: reasonUnknownFunction})
			continue
		}
		if owner, taken := r.entries[name]; taken {
			log.Warn("query function already registered by another system", map[string]interface{}{
				"systemName":   info.SystemName,
				"functionName": name,
				"owner":        owner.System.SystemName,
			})
			r.unresolved = append(r.unresolved, UnresolvedSystem{SystemName: info.SystemName, FunctionName: name, Reason: reasonDuplicateFunction})
			continue
		}

		r.entries[name] = Entry{FunctionName: name, Operation: op, System: info}
	}

	log.Info("function registry built", map[string]interface{}{
		"systems":    len(systemInfos),
		"functions":  len(r.entries),
		"unresolved": len(r.unresolved),
	})
	return r
}

// Resolve looks up a function name.
func (r *Registry) Resolve(functionName string) (Entry, bool) {
	e, ok := r.entries[functionName]
	return e, ok
}

// FindByLabel returns the SystemInfo with the given system name, whether or
// not its function resolved.
func (r *Registry) FindByLabel(systemLabel string) (models.SystemInfo, bool) {
	info, ok := r.byLabel[systemLabel]
	return info, ok
}

// Systems returns every SystemInfo the registry was built from, in input order.
func (r *Registry) Systems() []models.SystemInfo {
	return append([]models.SystemInfo(nil), r.systems...)
}

// Functions returns the registered function names, sorted.
func (r *Registry) Functions() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Functions:  make([]FunctionDescription, 0, len(r.entries)),
		Unresolved: append([]UnresolvedSystem{}, r.unresolved...),
	}
	for _, name := range r.Functions() {
		e := r.entries[name]
		columns := e.System.FilterableColumns
		if columns == nil {
			columns = []string{}
		}
		s.Functions = append(s.Functions, FunctionDescription{
			FunctionName:      name,
			SystemName:        e.System.SystemName,
			FilterableColumns: columns,
			FrontendRoute:     e.System.Route(),
		})
	}
	return s
}
