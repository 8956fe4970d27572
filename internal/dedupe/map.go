// Package dedupe provides an in-memory set used to deduplicate DRTA edges
// by their (source, target, symbol, region) key.
package dedupe

type MapBackend struct {
	storage map[string]struct{}
}

func NewMapBackend() *MapBackend {
	return &MapBackend{storage: map[string]struct{}{}}
}

func (m *MapBackend) Upsert(elem string) {
	m.storage[elem] = struct{}{}
}

// Exists reports whether elem has already been upserted.
func (m *MapBackend) Exists(elem string) bool {
	_, ok := m.storage[elem]
	return ok
}

// SeenOrAdd is Exists followed by Upsert in one call: it returns true if
// elem was already present, and unconditionally records it as seen.
func (m *MapBackend) SeenOrAdd(elem string) bool {
	seen := m.Exists(elem)
	m.Upsert(elem)
	return seen
}
