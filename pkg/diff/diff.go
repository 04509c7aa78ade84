package diff

// Pending returns the discovered ids that are not already stored. Discovery
// order is preserved and duplicates collapse to their first occurrence.
func Pending(discovered []string, stored []string) []string {
	existing := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		existing[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(discovered))
	pending := make([]string, 0, len(discovered))
	for _, id := range discovered {
		if id == "" {
			continue
		}
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, id)
	}

	return pending
}
