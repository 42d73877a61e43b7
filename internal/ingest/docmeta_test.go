package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocMeta_FieldsNormalized(t *testing.T) {
	body := "Application Number: 10-2023-0001234\n" +
		"Open Number: 10-2024-0005678\n" +
		"Application Date: 2023-02-01\n" +
		"free prose line without a recognizable key!\n"

	meta := ExtractDocMeta(body)
	assert.Equal(t, "10-2023-0001234", meta.Fields["application_number"])
	assert.Equal(t, "10-2024-0005678", meta.Fields["open_number"])
	assert.Equal(t, "2023-02-01", meta.Fields["application_date"])
}

func TestExtractDocMeta_PartyListsOrdered(t *testing.T) {
	body := "Applicant: 주식회사 가나다\n" +
		"Applicant 2: 주식회사 가나다\n" +
		"Inventor: 홍길동\n" +
		"inventor 2: 김철수\n" +
		"Agent: 특허법인 라마\n"

	meta := ExtractDocMeta(body)
	// Duplicates and order preserved.
	assert.Equal(t, []string{"주식회사 가나다", "주식회사 가나다"}, meta.Applicants)
	assert.Equal(t, []string{"홍길동", "김철수"}, meta.Inventors)
	assert.Equal(t, []string{"특허법인 라마"}, meta.Agents)
}

func TestExtractDocMeta_EmptyBody(t *testing.T) {
	meta := ExtractDocMeta("")
	assert.Empty(t, meta.Fields)
	assert.Nil(t, meta.Applicants)
}
