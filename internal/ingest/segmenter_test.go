package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSections_Ordered(t *testing.T) {
	raw := "preamble outside any section\n" +
		"### DOC_META\n" +
		"Application Number: 10-2023-0001234\n" +
		"\n" +
		"### ABSTRACT\n" +
		"\n" +
		"본 발명은 시트 보수재에 관한 것이다.\n" +
		"\n" +
		"### CLAIMS\n" +
		"[Claim 1]\n" +
		"보수재 조성물.\n"

	sections := SegmentSections(raw)
	require.Len(t, sections, 3)
	assert.Equal(t, "DOC_META", sections[0].Name)
	assert.Equal(t, "Application Number: 10-2023-0001234", sections[0].Body)
	assert.Equal(t, "ABSTRACT", sections[1].Name)
	assert.Equal(t, "본 발명은 시트 보수재에 관한 것이다.", sections[1].Body)
	assert.Equal(t, "CLAIMS", sections[2].Name)
}

func TestSegmentSections_EmptyBodyDropped(t *testing.T) {
	raw := "### EMPTY\n\n\n### FULL\ncontent\n"
	sections := SegmentSections(raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "FULL", sections[0].Name)
}

func TestSegmentSections_DuplicateNamesRetained(t *testing.T) {
	raw := "### NOTE\nfirst\n### NOTE\nsecond\n"
	sections := SegmentSections(raw)
	require.Len(t, sections, 2)
	assert.Equal(t, "first", sections[0].Body)
	assert.Equal(t, "second", sections[1].Body)
}

func TestSegmentSections_NoHeaders(t *testing.T) {
	assert.Empty(t, SegmentSections("just prose\nwith no headers at all\n"))
}

func TestSplitClaims_SubNumbering(t *testing.T) {
	body := "[Claim 1]\n조성물.\n[Claim 2-1]\n제1항에 있어서.\n[claim 2-2]\n제1항에 있어서, 추가로.\n"

	claims := SplitClaims(body)
	require.Len(t, claims, 3)

	assert.Equal(t, 1, claims[0].No)
	assert.Nil(t, claims[0].SubNo)
	assert.Equal(t, "조성물.", claims[0].Text)

	assert.Equal(t, 2, claims[1].No)
	require.NotNil(t, claims[1].SubNo)
	assert.Equal(t, 1, *claims[1].SubNo)

	assert.Equal(t, 2, claims[2].No)
	require.NotNil(t, claims[2].SubNo)
	assert.Equal(t, 2, *claims[2].SubNo)
}

func TestSplitClaims_LeadingTextDiscarded(t *testing.T) {
	body := "청구범위는 다음과 같다.\n[Claim 1]\nbody\n"
	claims := SplitClaims(body)
	require.Len(t, claims, 1)
	assert.Equal(t, "body", claims[0].Text)
}

func TestSplitClaims_EmptyClaimDropped(t *testing.T) {
	body := "[Claim 1]\n\n[Claim 2]\nreal body\n"
	claims := SplitClaims(body)
	require.Len(t, claims, 1)
	assert.Equal(t, 2, claims[0].No)
}

func TestSplitChunks_TaggedSection(t *testing.T) {
	body := "intro discarded\n[DESC 1]\n첫 번째 설명.\n[DESC 2]\n두 번째 설명.\n"
	chunks := SplitChunks(body)
	require.Len(t, chunks, 2)
	assert.Equal(t, "DESC", chunks[0].Tag)
	assert.Equal(t, 1, chunks[0].No)
	assert.Equal(t, "첫 번째 설명.", chunks[0].Text)
	assert.Equal(t, 2, chunks[1].No)
}

func TestSplitChunks_NoTagsSignalsFallback(t *testing.T) {
	assert.Empty(t, SplitChunks("plain paragraph one\n\nplain paragraph two"))
}

func TestSplitChunks_RejectsLowercaseAndLongTags(t *testing.T) {
	assert.Empty(t, SplitChunks("[desc 1]\nbody"))
	assert.Empty(t, SplitChunks("[ABCDEFG 1]\nbody"))
}

func TestSplitParagraphs(t *testing.T) {
	paras := SplitParagraphs("one\n\ntwo\n \n\nthree")
	assert.Equal(t, []string{"one", "two", "three"}, paras)
}
