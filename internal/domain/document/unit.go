// Package document defines the indexable unit model shared by the ingestion
// pipeline and the retrieval pipeline.  A Unit is one addressable piece of a
// patent document (a section, a claim, a tagged chunk, or a paragraph)
// carrying the document-level metadata propagated from its DOC_META header
// plus its own unit-local positional fields.  Infrastructure concerns
// (embedding, vector indexing, scanning) live in separate adapter layers.
package document

// Canonical section names assigned by the assembler.  Section names are
// normalized to lower case with spaces replaced by underscores.
const (
	SectionDocMeta  = "doc_meta"
	SectionAbstract = "abstract"
	SectionClaim    = "claim"
)

// Metadata is the typed metadata record attached to every Unit.  Document-level
// fields are identical for all units of one source document; the pointer-typed
// unit-local fields are set only on the unit kinds that carry them.  Fields not
// covered by the fixed set are preserved in Extra so DOC_META keys the parser
// does not recognize survive a round trip through the index.
type Metadata struct {
	// Document-level fields, propagated unchanged to every unit.
	Source            string   `json:"source"`
	Title             string   `json:"title,omitempty"`
	PatentNo          string   `json:"patent_no,omitempty"`
	ApplicationNumber string   `json:"application_number,omitempty"`
	ApplicationDate   string   `json:"application_date,omitempty"`
	OpenDate          string   `json:"open_date,omitempty"`
	Applicants        []string `json:"applicants,omitempty"`
	Inventors         []string `json:"inventors,omitempty"`
	Agents            []string `json:"agents,omitempty"`

	// Section is the normalized section name this unit was cut from.
	Section string `json:"section"`

	// Unit-local fields.  Nil means "not applicable to this unit kind".
	ClaimNo  *int    `json:"claim_no,omitempty"`
	SubNo    *int    `json:"sub_no,omitempty"`
	ChunkTag *string `json:"chunk_tag,omitempty"`
	ChunkNo  *int    `json:"chunk_no,omitempty"`
	ParaNo   *int    `json:"para_no,omitempty"`

	// Extra holds DOC_META fields outside the fixed set, keyed by their
	// normalized names.
	Extra map[string]string `json:"extra,omitempty"`
}

// Clone returns a deep copy of m.  The assembler clones the document-level
// base metadata for every unit so that mutating one unit's metadata can never
// bleed into its siblings.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Applicants != nil {
		out.Applicants = append([]string(nil), m.Applicants...)
	}
	if m.Inventors != nil {
		out.Inventors = append([]string(nil), m.Inventors...)
	}
	if m.Agents != nil {
		out.Agents = append([]string(nil), m.Agents...)
	}
	if m.ClaimNo != nil {
		v := *m.ClaimNo
		out.ClaimNo = &v
	}
	if m.SubNo != nil {
		v := *m.SubNo
		out.SubNo = &v
	}
	if m.ChunkTag != nil {
		v := *m.ChunkTag
		out.ChunkTag = &v
	}
	if m.ChunkNo != nil {
		v := *m.ChunkNo
		out.ChunkNo = &v
	}
	if m.ParaNo != nil {
		v := *m.ParaNo
		out.ParaNo = &v
	}
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Unit is the atomic indexable piece of a document.  Units are created once at
// ingestion time and immutable thereafter; re-ingesting a source file replaces
// all of its units.
type Unit struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// IntPtr returns a pointer to v.  Convenience for populating the optional
// unit-local metadata fields.
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }
