package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_Clone_Independence(t *testing.T) {
	orig := Metadata{
		Source:     "p1.txt",
		Title:      "시트 보수재",
		Applicants: []string{"갑", "을"},
		ClaimNo:    IntPtr(3),
		Extra:      map[string]string{"ipc": "E01C"},
	}

	cp := orig.Clone()
	cp.Applicants[0] = "changed"
	*cp.ClaimNo = 9
	cp.Extra["ipc"] = "B32B"

	assert.Equal(t, "갑", orig.Applicants[0])
	assert.Equal(t, 3, *orig.ClaimNo)
	assert.Equal(t, "E01C", orig.Extra["ipc"])
}

func TestCandidate_Variants(t *testing.T) {
	u := &Unit{Text: "claim text"}

	var c Candidate = &VectorMatch{U: u, Sim: 0.83}
	assert.Same(t, u, c.Unit())
	assert.Equal(t, 0.83, c.Score())

	c = &ExactMatch{U: u}
	assert.Same(t, u, c.Unit())
	assert.Zero(t, c.Score())
}

func TestSource_IsEmpty(t *testing.T) {
	assert.True(t, Source{}.IsEmpty())
	assert.False(t, Source{Title: "t"}.IsEmpty())
}
