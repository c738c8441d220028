package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	apperrors "erp-assistant/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DefaultIndex receives interactions unless configured otherwise.
const DefaultIndex = "erp-assistant-interactions"

type ElasticsearchRecorder struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchRecorder(client *elasticsearch.Client, index string) *ElasticsearchRecorder {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchRecorder{client: client, index: index}
}

// Record indexes the interaction under its request id.
func (r *ElasticsearchRecorder) Record(ctx context.Context, interaction Interaction) error {
	body, err := json.Marshal(interaction)
	if err != nil {
		return apperrors.NewAuditFailedError(err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: interaction.RequestID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return apperrors.NewAuditFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewAuditFailedError(fmt.Errorf("index %s: %s", r.index, responseText(res)))
	}
	return nil
}

// Recent returns the newest interactions first.
func (r *ElasticsearchRecorder) Recent(ctx context.Context, size int) ([]Interaction, error) {
	if size <= 0 {
		size = 20
	}
	query := map[string]interface{}{
		"sort": []interface{}{
			map[string]interface{}{"@timestamp": map[string]interface{}{"order": "desc"}},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
		r.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, apperrors.NewAuditFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewAuditFailedError(fmt.Errorf("search %s: %s", r.index, responseText(res)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Interaction `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewAuditFailedError(err)
	}

	out := make([]Interaction, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}

func responseText(res *esapi.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Sprintf("%s %s", res.Status(), bytes.TrimSpace(raw))
}
