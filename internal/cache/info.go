package cache

// Info describes one registered cache for diagnostics
type Info struct {
	Name    string
	Entries int
	Keys    []string
}

// List returns information about every registered cache, in creation order
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, r.caches.Len())
	for pair := r.caches.Oldest(); pair != nil; pair = pair.Next() {
		keys := pair.Value.keyStrings()
		infos = append(infos, Info{
			Name:    pair.Value.Name(),
			Entries: len(keys),
			Keys:    keys,
		})
	}
	return infos
}
