// internal/search/index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"scholarship-tracker/internal/common/database"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
)

var (
	ErrBulkRejected = errors.New("BULK_REJECTED")
)

// Mapping is the index definition for the scholarships index.
const Mapping = `{
	"mappings": {
		"properties": {
			"user_id": {"type": "keyword"},
			"id": {"type": "keyword"},
			"title": {"type": "text"},
			"description": {"type": "text"},
			"university": {"type": "text"},
			"subject": {"type": "text"},
			"amount": {"type": "text"},
			"country": {"type": "keyword"},
			"degree_level": {"type": "keyword"},
			"eligible_nationality": {"type": "keyword"},
			"status": {"type": "keyword"},
			"deadline": {"type": "keyword"},
			"matching_score": {"type": "float"},
			"source_url": {"type": "keyword", "index": false},
			"application_url": {"type": "keyword", "index": false},
			"eligibility_criteria": {"type": "text"},
			"application_procedure": {"type": "text"},
			"documents": {"type": "object", "enabled": false}
		}
	}
}`

// document is the indexed shape: a scholarship tagged with its owner.
type document struct {
	UserID string `json:"user_id"`
	models.Scholarship
}

// Service indexes and searches a user's scholarships.
type Service struct {
	es     *database.ElasticsearchClient
	logger logger.Logger
}

func NewService(es *database.ElasticsearchClient, log logger.Logger) *Service {
	return &Service{
		es:     es,
		logger: logger.Component(log, "search"),
	}
}

// EnsureIndex creates the scholarships index when it is missing.
func (s *Service) EnsureIndex(ctx context.Context) error {
	if err := s.es.EnsureIndex(ctx, Mapping); err != nil {
		return apperrors.NewSearchError("ensure_index", err)
	}
	return nil
}

// DocID is the document id of a user's scholarship.
func DocID(userID, scholarshipID string) string {
	return userID + ":" + scholarshipID
}

// Index bulk-indexes the scholarships for userID and returns how many were written.
// Re-indexing the same scholarship overwrites its document.
func (s *Service) Index(ctx context.Context, userID string, list []models.Scholarship) (int, error) {
	if userID == "" {
		return 0, apperrors.NewUnauthenticatedError("missing user id")
	}
	if len(list) == 0 {
		return 0, nil
	}

	body, err := bulkBody(userID, list)
	if err != nil {
		return 0, apperrors.NewSearchError("bulk_encode", err)
	}

	req := esapi.BulkRequest{
		Index: s.es.Index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return 0, apperrors.NewSearchError("bulk", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, apperrors.NewSearchError("bulk", fmt.Errorf("%w: %s", ErrBulkRejected, res.String()))
	}

	var r bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, apperrors.NewSearchError("bulk_decode", err)
	}

	indexed := 0
	var failed []string
	for _, item := range r.Items {
		result := item["index"]
		if result.Status >= 200 && result.Status < 300 {
			indexed++
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", result.ID, result.Error.Reason))
	}

	s.logger.Info("scholarships indexed", map[string]interface{}{
		"userId":  userID,
		"indexed": indexed,
		"failed":  len(failed),
	})

	if len(failed) > 0 {
		return indexed, apperrors.NewSearchError("bulk", fmt.Errorf("%w: %s", ErrBulkRejected, strings.Join(failed, "; ")))
	}
	return indexed, nil
}

// SyncResult reports what Sync wrote and removed.
type SyncResult struct {
	Indexed int `json:"indexed"`
	Removed int `json:"removed"`
}

// Sync makes the index hold exactly list for userID: every entry is indexed and
// the user's documents whose id is not in list are deleted.
func (s *Service) Sync(ctx context.Context, userID string, list []models.Scholarship) (*SyncResult, error) {
	indexed, err := s.Index(ctx, userID, list)
	if err != nil {
		return nil, err
	}
	removed, err := s.prune(ctx, userID, list)
	if err != nil {
		return nil, err
	}
	return &SyncResult{Indexed: indexed, Removed: removed}, nil
}

func (s *Service) prune(ctx context.Context, userID string, keep []models.Scholarship) (int, error) {
	body, err := json.Marshal(pruneQuery(userID, keep))
	if err != nil {
		return 0, apperrors.NewSearchError("prune_encode", err)
	}

	refresh := true
	req := esapi.DeleteByQueryRequest{
		Index:     []string{s.es.Index},
		Body:      bytes.NewReader(body),
		Conflicts: "proceed",
		Refresh:   &refresh,
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return 0, apperrors.NewSearchError("prune", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, apperrors.NewSearchError("prune", fmt.Errorf("delete by query failed: %s", res.String()))
	}

	var r struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, apperrors.NewSearchError("prune_decode", err)
	}
	if r.Deleted > 0 {
		s.logger.Info("stale scholarship documents removed", map[string]interface{}{
			"userId":  userID,
			"removed": r.Deleted,
		})
	}
	return r.Deleted, nil
}

func pruneQuery(userID string, keep []models.Scholarship) map[string]interface{} {
	boolQ := map[string]interface{}{
		"filter": []map[string]interface{}{
			{"term": map[string]interface{}{"user_id": userID}},
		},
	}
	if len(keep) > 0 {
		docIDs := make([]string, 0, len(keep))
		for _, sch := range keep {
			docIDs = append(docIDs, DocID(userID, sch.ID))
		}
		boolQ["must_not"] = []map[string]interface{}{
			{"ids": map[string]interface{}{"values": docIDs}},
		}
	}
	return map[string]interface{}{"query": map[string]interface{}{"bool": boolQ}}
}

func bulkBody(userID string, list []models.Scholarship) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, sch := range list {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_id": DocID(userID, sch.ID)},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, err
		}
		if err := enc.Encode(document{UserID: userID, Scholarship: sch}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type bulkResponse struct {
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkItemResponse `json:"items"`
}

type bulkItemResponse struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}
