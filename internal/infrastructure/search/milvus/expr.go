package milvus

import "strings"

// Identity fields the exact-match scan checks per token.  The list fields are
// probed with json_contains, the scalar fields with equality.
var (
	scanListFields   = []string{fieldApplicants, fieldInventors, fieldAgents}
	scanScalarFields = []string{fieldPatentNo, fieldApplicationNumber}
)

// quoteLiteral renders s as a Milvus string literal, escaping backslashes and
// double quotes.
func quoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// docMetaScanExpr builds the boolean expression for the exact-match metadata
// scan: units must be doc_meta sections AND at least one token must equal one
// of the five identity fields.  The disjunction carries tokens × 5 clauses
// with an implicit minimum-satisfy count of one.
func docMetaScanExpr(tokens []string) string {
	var clauses []string
	for _, tok := range tokens {
		lit := quoteLiteral(tok)
		for _, f := range scanListFields {
			clauses = append(clauses, "json_contains("+f+", "+lit+")")
		}
		for _, f := range scanScalarFields {
			clauses = append(clauses, f+" == "+lit)
		}
	}
	return fieldSection + ` == "doc_meta" && (` + strings.Join(clauses, " || ") + `)`
}

// sourceExpr builds the expression selecting every unit ingested from one
// source document.
func sourceExpr(source string) string {
	return fieldSource + " == " + quoteLiteral(source)
}
