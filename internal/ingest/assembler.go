package ingest

import (
	"strings"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
)

// titlePrefix marks the document title line anywhere in the raw file.
const titlePrefix = "TITLE:"

// extractTitle returns the value of the first "TITLE:" line in the raw file,
// or "" when absent.  The line is trimmed and the prefix matched
// case-insensitively.
func extractTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len(titlePrefix) && strings.EqualFold(trimmed[:len(titlePrefix)], titlePrefix) {
			return strings.TrimSpace(trimmed[len(titlePrefix):])
		}
	}
	return ""
}

// AssembleUnits turns one raw document into its list of indexable units.
// source identifies the originating file and is propagated to every unit.
// A document with no recognized sections yields an empty list, which callers
// treat as "skipped", not as an error.
func AssembleUnits(source, raw string) []document.Unit {
	sections := SegmentSections(raw)
	if len(sections) == 0 {
		return nil
	}

	// Only the first DOC_META section feeds document-level metadata; later
	// ones, if any, are still emitted as units but do not contribute fields.
	var meta DocMeta
	for _, sec := range sections {
		if strings.EqualFold(sec.Name, "DOC_META") {
			meta = ExtractDocMeta(sec.Body)
			break
		}
	}

	base := document.Metadata{
		Source: source,
		Title:  extractTitle(raw),
		// The open/publication number is the externally recognizable patent
		// identifier, so it is what users see as patent_no.
		PatentNo:          meta.Fields["open_number"],
		ApplicationNumber: meta.Fields["application_number"],
		ApplicationDate:   meta.Fields["application_date"],
		OpenDate:          meta.Fields["open_date"],
		Applicants:        meta.Applicants,
		Inventors:         meta.Inventors,
		Agents:            meta.Agents,
	}
	for k, v := range meta.Fields {
		switch k {
		case "open_number", "application_number", "application_date", "open_date", "title":
			continue
		}
		// Party fields are already collected into the ordered lists.
		if strings.HasPrefix(k, "applicant") || strings.HasPrefix(k, "inventor") || strings.HasPrefix(k, "agent") {
			continue
		}
		if base.Extra == nil {
			base.Extra = make(map[string]string)
		}
		base.Extra[k] = v
	}

	var units []document.Unit
	emit := func(text string, md document.Metadata) {
		units = append(units, document.Unit{Text: text, Metadata: md})
	}

	for _, sec := range sections {
		switch strings.ToLower(sec.Name) {
		case document.SectionDocMeta:
			md := base.Clone()
			md.Section = document.SectionDocMeta
			emit(sec.Body, md)

		case document.SectionAbstract:
			md := base.Clone()
			md.Section = document.SectionAbstract
			emit(sec.Body, md)

		case "claims":
			for _, c := range SplitClaims(sec.Body) {
				md := base.Clone()
				md.Section = document.SectionClaim
				md.ClaimNo = document.IntPtr(c.No)
				if c.SubNo != nil {
					md.SubNo = document.IntPtr(*c.SubNo)
				}
				emit(c.Text, md)
			}

		default:
			name := normalizeMetaKey(sec.Name)
			if chunks := SplitChunks(sec.Body); len(chunks) > 0 {
				for _, ch := range chunks {
					md := base.Clone()
					md.Section = name
					md.ChunkTag = document.StrPtr(ch.Tag)
					md.ChunkNo = document.IntPtr(ch.No)
					emit(ch.Text, md)
				}
				continue
			}
			paras := SplitParagraphs(sec.Body)
			if len(paras) == 1 {
				md := base.Clone()
				md.Section = name
				emit(paras[0], md)
				continue
			}
			for i, p := range paras {
				md := base.Clone()
				md.Section = name
				md.ParaNo = document.IntPtr(i + 1)
				emit(p, md)
			}
		}
	}

	return units
}
