// Package resource shapes models into the JSON the API returns.
//
// A Transformer decides exactly which fields leave the service:
//
//	var Sweet resource.Transformer[models.Sweet] = func(s models.Sweet) resource.Map {
//	    return resource.Map{"id": s.ID, "name": s.Name}
//	}
//
//	cx.Success(resource.Many(Sweet, sweets))
package resource

// Map is the output of a Transformer.
type Map = map[string]any

// Transformer converts one model into a Map.
type Transformer[T any] func(T) Map

// One transforms a single model, merging extra on top.
func One[T any](t Transformer[T], v T, extra ...Map) Map {
	out := t(v)
	for _, m := range extra {
		for k, val := range m {
			out[k] = val
		}
	}
	return out
}

// Many transforms a slice. The result is never nil so it encodes as [].
func Many[T any](t Transformer[T], items []T) []Map {
	out := make([]Map, 0, len(items))
	for _, item := range items {
		out = append(out, t(item))
	}
	return out
}
