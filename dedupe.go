package curator

// DedupeResult is the output of Dedupe. Keys is parallel to Examples.
type DedupeResult struct {
	Examples []*RawExample
	Keys     []CanonicalKey
	Dropped  int
}

// Dedupe drops examples whose canonical key was published before or
// already appeared earlier in the sequence. Order is preserved, so the
// first occurrence in registry order wins.
func Dedupe(examples []*RawExample, seen *Snapshot) DedupeResult {
	var res DedupeResult
	inRun := make(map[CanonicalKey]struct{}, len(examples))
	for _, ex := range examples {
		key := KeyOf(ex.Code)
		if _, ok := inRun[key]; ok || seen.Contains(key) {
			res.Dropped++
			continue
		}
		inRun[key] = struct{}{}
		res.Examples = append(res.Examples, ex)
		res.Keys = append(res.Keys, key)
	}
	return res
}
