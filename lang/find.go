package lang

import "github.com/sahilm/fuzzy"

// Hit is a question matched by [Module.Find].
type Hit struct {
	Path     Path
	Question *Question
	// Matched holds the byte offsets in the header of the matched characters.
	Matched []int
	Score   int
}

// questions adapts the module's questions to fuzzy.Source.
type questions struct {
	paths []Path
	items []*Question
}

func (q questions) String(i int) string { return q.items[i].Header }
func (q questions) Len() int            { return len(q.items) }

// Find fuzzy-matches pattern against the header of every question, nested
// loop questions included, and returns the hits ordered by descending score.
func (m *Module) Find(pattern string) []Hit {
	var src questions

	for path, it := range m.Walk() {
		if q, ok := it.(*Question); ok {
			src.paths = append(src.paths, clonePath(path))
			src.items = append(src.items, q)
		}
	}

	matches := fuzzy.FindFrom(pattern, src)
	hits := make([]Hit, 0, len(matches))

	for _, match := range matches {
		hits = append(hits, Hit{
			Path:     src.paths[match.Index],
			Question: src.items[match.Index],
			Matched:  match.MatchedIndexes,
			Score:    match.Score,
		})
	}

	return hits
}
