package document

// Candidate is a retrieved unit flowing through the ranking and merge stages.
// The two retrieval paths produce different variants: vector search yields
// similarity-scored matches, the metadata scan yields unscored exact matches.
// Modeling them as variants behind one interface lets the merge and synthesis
// stages treat the combined list uniformly without runtime type inspection.
type Candidate interface {
	// Unit returns the retrieved unit.  The returned pointer is shared, not a
	// copy: the prefix postprocessor mutates candidate text in place.
	Unit() *Unit

	// Score returns the ranking signal: cosine similarity for vector matches,
	// 0.0 for exact matches ("matched, no ranking signal").
	Score() float64
}

// VectorMatch is a candidate produced by approximate nearest-neighbor search,
// optionally rescored by the cross-encoder reranker.
type VectorMatch struct {
	U   *Unit
	Sim float64
}

func (v *VectorMatch) Unit() *Unit    { return v.U }
func (v *VectorMatch) Score() float64 { return v.Sim }

// ExactMatch is a candidate produced by the exact-match metadata scan.  It
// carries no relevance signal; presence is binary.
type ExactMatch struct {
	U *Unit
}

func (e *ExactMatch) Unit() *Unit    { return e.U }
func (e *ExactMatch) Score() float64 { return 0.0 }

// Source is one attributed citation in a chat answer: the identity triple of a
// patent a candidate was drawn from.  Sources are deduplicated by exact triple
// equality, preserving first-seen order.
type Source struct {
	PatentNo      string `json:"patent_no"`
	ApplicationNo string `json:"application_no"`
	Title         string `json:"title"`
}

// IsEmpty reports whether all three identity fields are absent.  Candidates
// with an all-empty triple contribute no citation.
func (s Source) IsEmpty() bool {
	return s.PatentNo == "" && s.ApplicationNo == "" && s.Title == ""
}
