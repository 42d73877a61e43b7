package opensearch

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// Operator splitting patterns: the literal tokens OR / AND, case-insensitive,
// surrounded by whitespace.
var (
	reOrSplit  = regexp.MustCompile(`(?i)\s+or\s+`)
	reAndSplit = regexp.MustCompile(`(?i)\s+and\s+`)
)

// Criteria is one catalog search request.  Text fields are AND-combined with
// each other; each text value is independently OR/AND-parsed.  The number
// fields and status filter are always exact matches.  Page is 1-based.
type Criteria struct {
	TechKeyword        string
	ProductKeyword     string
	Description        string
	Claims             string
	Inventor           string
	Manager            string
	Applicant          string
	ApplicationNumber  string
	RegistrationNumber string
	Statuses           []string
	Page               int
	PageSize           int
}

// textCriteria maps each free-text criterion to its index field.
func (c Criteria) textCriteria() []struct{ field, value string } {
	return []struct{ field, value string }{
		{"tech_keyword", c.TechKeyword},
		{"product_keyword", c.ProductKeyword},
		{"description", c.Description},
		{"claims", c.Claims},
		{"inventor", c.Inventor},
		{"manager", c.Manager},
		{"applicant", c.Applicant},
	}
}

// hasTextCriteria reports whether at least one free-text criterion was
// supplied.  Highlighting is enabled only in that case.
func (c Criteria) hasTextCriteria() bool {
	for _, tc := range c.textCriteria() {
		if strings.TrimSpace(tc.value) != "" {
			return true
		}
	}
	return false
}

// parseBooleanQuery builds the clause for one field according to the boolean
// contract: a query containing " OR " becomes a disjunction with minimum
// match 1, one containing " AND " becomes a conjunction, anything else a
// single match.  OR takes precedence when both tokens appear.
func parseBooleanQuery(field, query string) map[string]interface{} {
	match := func(term string) map[string]interface{} {
		return map[string]interface{}{
			"match": map[string]interface{}{field: strings.TrimSpace(term)},
		}
	}

	if reOrSplit.MatchString(query) {
		terms := reOrSplit.Split(query, -1)
		should := make([]map[string]interface{}, 0, len(terms))
		for _, t := range terms {
			should = append(should, match(t))
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	if reAndSplit.MatchString(query) {
		terms := reAndSplit.Split(query, -1)
		must := make([]map[string]interface{}, 0, len(terms))
		for _, t := range terms {
			must = append(must, match(t))
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		}
	}

	return match(query)
}

// buildCatalogQuery assembles the full search body for a Criteria: all
// supplied criteria AND-combined, 1-based pagination, highlighting on the
// text fields when any text criterion is present.
func buildCatalogQuery(c Criteria) map[string]interface{} {
	var must []map[string]interface{}

	for _, tc := range c.textCriteria() {
		if strings.TrimSpace(tc.value) == "" {
			continue
		}
		must = append(must, parseBooleanQuery(tc.field, tc.value))
	}

	if c.ApplicationNumber != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"application_number": c.ApplicationNumber},
		})
	}
	if c.RegistrationNumber != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"registration_number": c.RegistrationNumber},
		})
	}
	if len(c.Statuses) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"status": c.Statuses},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	page := c.Page
	if page < 1 {
		page = 1
	}
	size := c.PageSize
	if size < 1 {
		size = 10
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  (page - 1) * size,
		"size":  size,
	}

	if c.hasTextCriteria() {
		fields := map[string]interface{}{}
		for _, tc := range c.textCriteria() {
			fields[tc.field] = map[string]interface{}{}
		}
		body["highlight"] = map[string]interface{}{"fields": fields}
	}

	return body
}

// Hit is one catalog result document with optional highlight fragments.
type Hit struct {
	ID         string                     `json:"id"`
	Fields     map[string]json.RawMessage `json:"fields"`
	Highlights map[string][]string        `json:"highlights,omitempty"`
}

// Result is one catalog search response page.
type Result struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Catalog runs structured searches over the patent catalog index.
type Catalog struct {
	client *Client
	index  string
	logger logging.Logger
}

// NewCatalog constructs the catalog adapter over index.
func NewCatalog(client *Client, index string, logger logging.Logger) *Catalog {
	return &Catalog{client: client, index: index, logger: logger.Named("catalog")}
}

// Search executes one catalog query.
func (cat *Catalog) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	body, err := json.Marshal(buildCatalogQuery(criteria))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal catalog query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{cat.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, cat.client.Raw())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCatalogSearchFailed, "catalog search failed")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Newf(errors.ErrCodeCatalogSearchFailed, "catalog search returned %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID        string                     `json:"_id"`
				Source    map[string]json.RawMessage `json:"_source"`
				Highlight map[string][]string        `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode catalog response")
	}

	out := &Result{Total: parsed.Hits.Total.Value}
	for _, h := range parsed.Hits.Hits {
		out.Hits = append(out.Hits, Hit{ID: h.ID, Fields: h.Source, Highlights: h.Highlight})
	}
	return out, nil
}
