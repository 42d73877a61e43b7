package opensearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBooleanQuery_Or(t *testing.T) {
	clause := parseBooleanQuery("claims", "폴리머 OR 수지")

	boolClause, ok := clause["bool"].(map[string]interface{})
	require.True(t, ok)
	should, ok := boolClause["should"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, should, 2)
	assert.Equal(t, 1, boolClause["minimum_should_match"])
	assert.Equal(t, "폴리머", should[0]["match"].(map[string]interface{})["claims"])
	assert.Equal(t, "수지", should[1]["match"].(map[string]interface{})["claims"])
}

func TestParseBooleanQuery_And(t *testing.T) {
	clause := parseBooleanQuery("description", "보수재 and 시트")

	boolClause, ok := clause["bool"].(map[string]interface{})
	require.True(t, ok)
	must, ok := boolClause["must"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, must, 2)
	assert.NotContains(t, boolClause, "minimum_should_match")
}

func TestParseBooleanQuery_Single(t *testing.T) {
	clause := parseBooleanQuery("inventor", "홍길동")
	match, ok := clause["match"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "홍길동", match["inventor"])
}

func TestParseBooleanQuery_OperatorNeedsWhitespace(t *testing.T) {
	// "ORGANIC" must not be treated as an OR expression.
	clause := parseBooleanQuery("description", "ORGANIC COATING")
	_, isMatch := clause["match"]
	assert.True(t, isMatch)
}

func TestBuildCatalogQuery_FieldsCombinedWithAnd(t *testing.T) {
	body := buildCatalogQuery(Criteria{
		TechKeyword: "보수재",
		Inventor:    "홍길동",
		Page:        1,
		PageSize:    20,
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]map[string]interface{})
	assert.Len(t, must, 2)
}

func TestBuildCatalogQuery_ExactFieldsNeverParsed(t *testing.T) {
	body := buildCatalogQuery(Criteria{
		ApplicationNumber: "10-2023-0001234 OR 10-2023-0009999",
		Statuses:          []string{"registered", "open"},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]map[string]interface{})
	require.Len(t, must, 2)

	term := must[0]["term"].(map[string]interface{})
	assert.Equal(t, "10-2023-0001234 OR 10-2023-0009999", term["application_number"],
		"number fields are exact matches, never OR/AND-parsed")

	terms := must[1]["terms"].(map[string]interface{})
	assert.Equal(t, []string{"registered", "open"}, terms["status"])
}

func TestBuildCatalogQuery_Pagination(t *testing.T) {
	body := buildCatalogQuery(Criteria{TechKeyword: "x", Page: 3, PageSize: 20})
	assert.Equal(t, 40, body["from"], "page numbers are 1-based")
	assert.Equal(t, 20, body["size"])

	body = buildCatalogQuery(Criteria{TechKeyword: "x"})
	assert.Equal(t, 0, body["from"])
	assert.Equal(t, 10, body["size"])
}

func TestBuildCatalogQuery_HighlightOnlyWithTextCriteria(t *testing.T) {
	withText := buildCatalogQuery(Criteria{Claims: "폴리머"})
	assert.Contains(t, withText, "highlight")

	exactOnly := buildCatalogQuery(Criteria{ApplicationNumber: "10-2023-0001234"})
	assert.NotContains(t, exactOnly, "highlight")
}
