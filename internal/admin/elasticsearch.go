// internal/admin/elasticsearch.go
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cruise-decision-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchAuditSink indexes audit records by id so operators can search
// them alongside other traces. Re-indexing the same id is idempotent.
type ElasticsearchAuditSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchAuditSink(client *elasticsearch.Client, index string) *ElasticsearchAuditSink {
	return &ElasticsearchAuditSink{client: client, index: index}
}

func (s *ElasticsearchAuditSink) Append(ctx context.Context, r models.AuditRecord) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: r.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index audit record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index audit record: %s", res.String())
	}
	return nil
}

type auditSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.AuditRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchAuditSink) ListRecent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	query := map[string]interface{}{
		"size":  ClampAuditLimit(limit),
		"sort":  []interface{}{map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}}},
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search audit records: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search audit records: %s", res.String())
	}

	var parsed auditSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode audit search: %w", err)
	}

	out := make([]models.AuditRecord, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
