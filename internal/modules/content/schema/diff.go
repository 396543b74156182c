package schema

import "sort"

// HasStructuralChange reports whether newFields differs from oldFields in any
// field id, type or nested shape. Order and presentation attributes are
// ignored.
func HasStructuralChange(oldFields, newFields []Field) bool {
	return !sameShape(oldFields, newFields)
}

// Changes lists the dotted ids that were added, removed or retyped, sorted.
func Changes(oldFields, newFields []Field) (added, removed, retyped []string) {
	collect("", oldFields, newFields, &added, &removed, &retyped)
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(retyped)
	return added, removed, retyped
}

func sameShape(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	byID := index(a)
	if len(byID) != len(a) {
		return false
	}
	for _, nf := range b {
		of, ok := byID[nf.Key()]
		if !ok {
			return false
		}
		if normalizeType(of.Type) != normalizeType(nf.Type) {
			return false
		}
		if !sameShape(of.Fields, nf.Fields) {
			return false
		}
		delete(byID, nf.Key())
	}
	return len(byID) == 0
}

func collect(prefix string, oldFields, newFields []Field, added, removed, retyped *[]string) {
	oldByID := index(oldFields)
	newByID := index(newFields)
	for id, of := range oldByID {
		nf, ok := newByID[id]
		if !ok {
			*removed = append(*removed, prefix+id)
			continue
		}
		if normalizeType(of.Type) != normalizeType(nf.Type) {
			*retyped = append(*retyped, prefix+id)
			continue
		}
		collect(prefix+id+".", of.Fields, nf.Fields, added, removed, retyped)
	}
	for id := range newByID {
		if _, ok := oldByID[id]; !ok {
			*added = append(*added, prefix+id)
		}
	}
}

func index(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		out[f.Key()] = f
	}
	return out
}
