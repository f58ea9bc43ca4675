package search

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"scholarship-tracker/internal/common/database"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
)

// ==========================
// Test fixtures
// ==========================

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeES struct {
	mu        sync.Mutex
	requests  []recordedRequest
	status    int
	response  string
	responses map[string]string // by path, overrides response
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	status, response := f.status, f.response
	if override, ok := f.responses[r.URL.Path]; ok {
		response = override
	}
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakeES) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeES) byPath(t *testing.T, path string) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.Path == path {
			return r
		}
	}
	t.Fatalf("no request to %s", path)
	return recordedRequest{}
}

func newTestService(t *testing.T, fake *fakeES) *Service {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
	})
	require.NoError(t, err)

	es := &database.ElasticsearchClient{Client: client, Index: "scholarships"}
	return NewService(es, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func scholarship(id, title string) models.Scholarship {
	return models.Scholarship{
		ID:          id,
		Title:       title,
		University:  "TU Munich",
		Country:     "Germany",
		DegreeLevel: "Masters",
		Status:      models.StatusMatched,
		Documents:   models.NewDocumentBundle(),
	}
}

// ==========================
// Index
// ==========================

func TestIndex_WritesOneActionPerScholarship(t *testing.T) {
	fake := &fakeES{response: `{"errors":false,"items":[
		{"index":{"_id":"user-1:s1","status":201}},
		{"index":{"_id":"user-1:s2","status":200}}
	]}`}
	svc := newTestService(t, fake)

	n, err := svc.Index(context.Background(), "user-1", []models.Scholarship{
		scholarship("s1", "DAAD"),
		scholarship("s2", "Erasmus"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/scholarships/_bulk", req.Path)

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(req.Body))
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 4)

	assert.Equal(t, "user-1:s1", lines[0]["index"].(map[string]interface{})["_id"])
	assert.Equal(t, "user-1", lines[1]["user_id"])
	assert.Equal(t, "DAAD", lines[1]["title"])
	assert.Equal(t, "user-1:s2", lines[2]["index"].(map[string]interface{})["_id"])
	assert.Equal(t, "Erasmus", lines[3]["title"])
}

func TestIndex_ReportsRejectedItems(t *testing.T) {
	fake := &fakeES{response: `{"errors":true,"items":[
		{"index":{"_id":"user-1:s1","status":201}},
		{"index":{"_id":"user-1:s2","status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse"}}}
	]}`}
	svc := newTestService(t, fake)

	n, err := svc.Index(context.Background(), "user-1", []models.Scholarship{
		scholarship("s1", "DAAD"),
		scholarship("s2", "Erasmus"),
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSearchFailed))
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestIndex_EmptyListIsNoop(t *testing.T) {
	fake := &fakeES{}
	svc := newTestService(t, fake)

	n, err := svc.Index(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, fake.requests)
}

func TestIndex_RequiresUser(t *testing.T) {
	svc := newTestService(t, &fakeES{})

	_, err := svc.Index(context.Background(), "", []models.Scholarship{scholarship("s1", "DAAD")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

// ==========================
// Sync
// ==========================

func TestSync_IndexesThenPrunesStaleDocuments(t *testing.T) {
	fake := &fakeES{responses: map[string]string{
		"/scholarships/_bulk":            `{"errors":false,"items":[{"index":{"_id":"user-1:s1","status":200}}]}`,
		"/scholarships/_delete_by_query": `{"took":4,"deleted":2,"failures":[]}`,
	}}
	svc := newTestService(t, fake)

	res, err := svc.Sync(context.Background(), "user-1", []models.Scholarship{scholarship("s1", "DAAD")})
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Indexed: 1, Removed: 2}, res)

	require.Len(t, fake.requests, 2)
	assert.Equal(t, "/scholarships/_bulk", fake.requests[0].Path)

	prune := fake.byPath(t, "/scholarships/_delete_by_query")
	assert.Equal(t, http.MethodPost, prune.Method)
	assert.Contains(t, prune.Query, "conflicts=proceed")
	assert.JSONEq(t, `{"query":{"bool":{
		"filter":[{"term":{"user_id":"user-1"}}],
		"must_not":[{"ids":{"values":["user-1:s1"]}}]
	}}}`, prune.Body)
}

func TestSync_EmptyCollectionRemovesEverything(t *testing.T) {
	fake := &fakeES{responses: map[string]string{
		"/scholarships/_delete_by_query": `{"deleted":3}`,
	}}
	svc := newTestService(t, fake)

	res, err := svc.Sync(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Removed: 3}, res)

	require.Len(t, fake.requests, 1)
	assert.JSONEq(t, `{"query":{"bool":{"filter":[{"term":{"user_id":"user-1"}}]}}}`, fake.requests[0].Body)
}

func TestSync_PruneFailure(t *testing.T) {
	fake := &fakeES{status: http.StatusInternalServerError, response: `{"error":"boom"}`}
	svc := newTestService(t, fake)

	_, err := svc.Sync(context.Background(), "user-1", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSearchFailed))
}

// ==========================
// Reindexer
// ==========================

type recordingPublisher struct {
	names []string
	keys  []string
	vars  []interface{}
	err   error
}

func (p *recordingPublisher) PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error {
	p.names = append(p.names, name)
	p.keys = append(p.keys, correlationKey)
	p.vars = append(p.vars, variables)
	return p.err
}

func TestReindexer_CollectionChanged(t *testing.T) {
	list := []models.Scholarship{scholarship("s1", "DAAD")}

	t.Run("hands off to the workflow", func(t *testing.T) {
		fake := &fakeES{}
		pub := &recordingPublisher{}
		r := NewReindexer(newTestService(t, fake), pub, logger.NewZapAdapter(zaptest.NewLogger(t)))

		r.CollectionChanged(context.Background(), "user-1", list)
		assert.Equal(t, []string{CollectionChangedMessage}, pub.names)
		assert.Equal(t, []string{"user-1"}, pub.keys)
		assert.Equal(t, map[string]interface{}{"userId": "user-1", "count": 1}, pub.vars[0])
		assert.Empty(t, fake.requests)
	})

	t.Run("syncs inline when publishing fails", func(t *testing.T) {
		fake := &fakeES{responses: map[string]string{
			"/scholarships/_bulk":            `{"items":[{"index":{"_id":"user-1:s1","status":200}}]}`,
			"/scholarships/_delete_by_query": `{"deleted":0}`,
		}}
		pub := &recordingPublisher{err: errors.New("gateway unavailable")}
		r := NewReindexer(newTestService(t, fake), pub, logger.NewZapAdapter(zaptest.NewLogger(t)))

		r.CollectionChanged(context.Background(), "user-1", list)
		require.Len(t, fake.requests, 2)
		assert.Equal(t, "/scholarships/_bulk", fake.requests[0].Path)
	})

	t.Run("syncs inline without a publisher", func(t *testing.T) {
		fake := &fakeES{responses: map[string]string{
			"/scholarships/_bulk":            `{"items":[{"index":{"_id":"user-1:s1","status":200}}]}`,
			"/scholarships/_delete_by_query": `{"deleted":1}`,
		}}
		r := NewReindexer(newTestService(t, fake), nil, logger.NewZapAdapter(zaptest.NewLogger(t)))

		r.CollectionChanged(context.Background(), "user-1", list)
		assert.Len(t, fake.requests, 2)
	})
}

// ==========================
// Search
// ==========================

const searchHits = `{
	"took": 3,
	"hits": {
		"total": {"value": 1, "relation": "eq"},
		"max_score": 2.5,
		"hits": [
			{"_id": "user-1:s1", "_score": 2.5, "_source": {
				"user_id": "user-1", "id": "s1", "title": "DAAD", "country": "Germany",
				"degree_level": "Masters", "status": "matched", "matching_score": 91
			}}
		]
	}
}`

func TestSearch_ParsesHits(t *testing.T) {
	fake := &fakeES{response: searchHits}
	svc := newTestService(t, fake)

	res, err := svc.Search(context.Background(), "user-1", Query{Text: "engineering"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.TotalHits)
	assert.Equal(t, 2.5, res.MaxScore)
	require.Len(t, res.Scholarships, 1)
	assert.Equal(t, "s1", res.Scholarships[0].ID)
	assert.Equal(t, "DAAD", res.Scholarships[0].Title)
	assert.Equal(t, float64(91), res.Scholarships[0].MatchingScore)

	req := fake.last(t)
	assert.Equal(t, "/scholarships/_search", req.Path)
	assert.Contains(t, req.Query, "size=20")
	assert.Contains(t, req.Body, `"multi_match"`)
	assert.Contains(t, req.Body, `"engineering"`)
}

func TestSearch_UpstreamError(t *testing.T) {
	fake := &fakeES{status: http.StatusInternalServerError, response: `{"error":"boom"}`}
	svc := newTestService(t, fake)

	_, err := svc.Search(context.Background(), "user-1", Query{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstreamFailure))
}

func TestSearch_RejectsUnknownStatus(t *testing.T) {
	fake := &fakeES{}
	svc := newTestService(t, fake)

	_, err := svc.Search(context.Background(), "user-1", Query{Status: "archived"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	assert.Empty(t, fake.requests)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       Query
		wantFilters int
		wantText    bool
	}{
		{"user filter only", Query{}, 1, false},
		{"all filters", Query{Country: "Germany", DegreeLevel: "Masters", Status: "added"}, 4, false},
		{"free text", Query{Text: "physics", Country: "Japan"}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := buildQuery("user-1", tt.query)
			boolQ := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

			filter := boolQ["filter"].([]map[string]interface{})
			assert.Len(t, filter, tt.wantFilters)
			assert.Equal(t, map[string]interface{}{"user_id": "user-1"}, filter[0]["term"])

			must := boolQ["must"].([]map[string]interface{})
			require.Len(t, must, 1)
			_, isText := must[0]["multi_match"]
			assert.Equal(t, tt.wantText, isText)

			_, sorted := q["sort"]
			assert.Equal(t, !tt.wantText, sorted)
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, defaultSize, normalizeQuery(Query{}).Size)
	assert.Equal(t, maxSize, normalizeQuery(Query{Size: 1000}).Size)
	assert.Equal(t, 0, normalizeQuery(Query{From: -5}).From)
	assert.Equal(t, "x", normalizeQuery(Query{Text: "  x "}).Text)
}
