package ui

import (
	"context"

	"forecastconsole/internal/api"
	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/table"
)

// Backend is the part of the API client the console uses. *api.Client
// implements it.
type Backend interface {
	List(ctx context.Context, r api.Resource, filters api.Filters) ([]table.Record, error)
	Create(ctx context.Context, r api.Resource, payload map[string]any) (table.Record, error)
	Update(ctx context.Context, r api.Resource, id int, payload map[string]any) (table.Record, error)
	Delete(ctx context.Context, r api.Resource, id int) error
	Health(ctx context.Context) (map[string]any, error)
	Purge()
}

var _ Backend = (*api.Client)(nil)

// Lookups holds related collections keyed by resource, used to resolve
// foreign keys to names.
type Lookups map[api.Resource][]table.Record

// Find returns the record of r whose idKey equals id. Numeric ids compare
// by value so 3 and 3.0 match.
func (l Lookups) Find(r api.Resource, idKey string, id any) (table.Record, bool) {
	want, ok := jsonutil.ToFloat(id)
	if !ok {
		return nil, false
	}
	for _, rec := range l[r] {
		if got, ok := jsonutil.ToFloat(rec[idKey]); ok && got == want {
			return rec, true
		}
	}
	return nil, false
}

// Name returns the nameKey field of the matching record, or "" when there is
// none.
func (l Lookups) Name(r api.Resource, idKey, nameKey string, id any) string {
	rec, ok := l.Find(r, idKey, id)
	if !ok {
		return ""
	}
	return jsonutil.ToString(rec[nameKey])
}

// recordID reads an integer identifier from rec.
func recordID(rec table.Record, key string) (int, bool) {
	f, ok := jsonutil.ToFloat(rec[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}
