// Package search keeps an optional Elasticsearch index of published videos.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
)

type VideoDoc struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Views       int64     `json:"views"`
	Duration    float64   `json:"duration"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Query struct {
	Text    string
	OwnerID uuid.UUID
	SortBy  string
	Asc     bool
	From    int
	Size    int
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(addr, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

// Mapping is the index layout. Ids are keywords so they can be filtered and
// used as the last sort key.
func Mapping() map[string]any {
	keyword := map[string]any{"type": "keyword"}
	text := map[string]any{"type": "text"}
	return map[string]any{
		"mappings": map[string]any{
			"dynamic": "strict",
			"properties": map[string]any{
				"id":           keyword,
				"owner_id":     keyword,
				"title":        text,
				"description":  text,
				"views":        map[string]any{"type": "long"},
				"duration":     map[string]any{"type": "double"},
				"is_published": map[string]any{"type": "boolean"},
				"created_at":   map[string]any{"type": "date"},
			},
		},
	}
}

// Ensure creates the index with Mapping when it is missing and rejects an
// existing index whose id fields are not keywords.
func (i *Index) Ensure(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case 200:
		return i.checkMapping(ctx)
	case 404:
	default:
		return fmt.Errorf("check index %s: %s", i.index, res.Status())
	}

	body, err := json.Marshal(Mapping())
	if err != nil {
		return err
	}
	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		if strings.Contains(string(msg), "resource_already_exists_exception") {
			return i.checkMapping(ctx)
		}
		return fmt.Errorf("create index %s: %s: %s", i.index, res.Status(), msg)
	}
	return nil
}

func (i *Index) checkMapping(ctx context.Context) error {
	res, err := i.es.Indices.GetMapping(
		i.es.Indices.GetMapping.WithContext(ctx),
		i.es.Indices.GetMapping.WithIndex(i.index),
	)
	if err != nil {
		return fmt.Errorf("get mapping %s: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("get mapping %s: %s", i.index, res.Status())
	}
	return checkKeywords(res.Body, "id", "owner_id")
}

// checkKeywords reads a get-mapping response and requires every field to be
// a keyword in every index it lists.
func checkKeywords(r io.Reader, fields ...string) error {
	var got map[string]struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(r).Decode(&got); err != nil {
		return fmt.Errorf("decode mapping: %w", err)
	}
	if len(got) == 0 {
		return fmt.Errorf("mapping response lists no index")
	}
	for name, idx := range got {
		for _, f := range fields {
			if t := idx.Mappings.Properties[f].Type; t != "keyword" {
				return fmt.Errorf("index %s maps %s as %q, want keyword; reindex required", name, f, t)
			}
		}
	}
	return nil
}

func (i *Index) Put(ctx context.Context, doc VideoDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index video %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index video %s: %s", doc.ID, res.Status())
	}
	return nil
}

func (i *Index) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := i.es.Delete(i.index, id.String(), i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete video %s: %s", id, res.Status())
	}
	return nil
}

// SearchIDs returns matching video ids in rank order and the total hit count.
func (i *Index) SearchIDs(ctx context.Context, q Query) (int64, []uuid.UUID, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(q)); err != nil {
		return 0, nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search videos: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search videos: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

const defaultSort = "views"

var sortable = map[string]string{
	"views":     "views",
	"createdAt": "created_at",
	"duration":  "duration",
}

func searchBody(q Query) map[string]any {
	filter := []any{map[string]any{"term": map[string]any{"is_published": true}}}
	if q.OwnerID != uuid.Nil {
		filter = append(filter, map[string]any{"term": map[string]any{"owner_id": q.OwnerID.String()}})
	}

	boolQ := map[string]any{"filter": filter}
	if text := strings.TrimSpace(q.Text); text != "" {
		boolQ["must"] = map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		}
	}

	order := "desc"
	if q.Asc {
		order = "asc"
	}
	secondary, ok := sortable[q.SortBy]
	if !ok {
		secondary = defaultSort
	}
	sort := []any{"_score", map[string]any{secondary: map[string]any{"order": order}}}
	if secondary != "created_at" {
		sort = append(sort, map[string]any{"created_at": map[string]any{"order": "desc"}})
	}
	sort = append(sort, map[string]any{"id": map[string]any{"order": "asc"}})

	return map[string]any{
		"query":            map[string]any{"bool": boolQ},
		"sort":             sort,
		"from":             q.From,
		"size":             q.Size,
		"track_total_hits": true,
	}
}
