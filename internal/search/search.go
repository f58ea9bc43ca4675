// internal/search/search.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/models"
)

const (
	defaultSize = 20
	maxSize     = 100
)

// Query narrows a user's scholarships. Empty fields do not filter.
type Query struct {
	Text        string
	Country     string
	DegreeLevel string
	Status      string
	From        int
	Size        int
}

// Result is one page of search hits, best match first.
type Result struct {
	Scholarships []models.Scholarship `json:"scholarships"`
	TotalHits    int64                `json:"total_hits"`
	MaxScore     float64              `json:"max_score"`
	Took         int64                `json:"took"`
}

// Search runs q against the caller's documents only.
func (s *Service) Search(ctx context.Context, userID string, q Query) (*Result, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("missing user id")
	}
	if q.Status != "" && q.Status != models.StatusMatched && q.Status != models.StatusAdded {
		return nil, apperrors.NewFieldValidationError("status", fmt.Sprintf("unknown status %q", q.Status))
	}
	q = normalizeQuery(q)

	body, err := json.Marshal(buildQuery(userID, q))
	if err != nil {
		return nil, apperrors.NewSearchError("encode_query", err)
	}

	from, size := q.From, q.Size
	req := esapi.SearchRequest{
		Index: []string{s.es.Index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	start := time.Now()
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, apperrors.NewSearchError("search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchError("search", fmt.Errorf("search query failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchError("search_decode", err)
	}

	out := &Result{
		Scholarships: make([]models.Scholarship, 0, len(r.Hits.Hits)),
		TotalHits:    r.Hits.Total.Value,
		Took:         time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		out.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		out.Scholarships = append(out.Scholarships, hit.Source.Scholarship)
	}
	return out, nil
}

func normalizeQuery(q Query) Query {
	q.Text = strings.TrimSpace(q.Text)
	if q.From < 0 {
		q.From = 0
	}
	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	return q
}

// buildQuery builds a bool query: free text in must, exact fields in filter.
// The user filter is always present.
func buildQuery(userID string, q Query) map[string]interface{} {
	filter := []map[string]interface{}{
		{"term": map[string]interface{}{"user_id": userID}},
	}
	if q.Country != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"country": q.Country}})
	}
	if q.DegreeLevel != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"degree_level": q.DegreeLevel}})
	}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"status": q.Status}})
	}

	must := []map[string]interface{}{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"title^3", "subject^2", "university^2", "description"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	if q.Text == "" {
		query["sort"] = []map[string]interface{}{{"matching_score": "desc"}}
	}
	return query
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string   `json:"_id"`
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
