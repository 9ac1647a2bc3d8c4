package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// ArticlesMapping is the index mapping for approved articles.
const ArticlesMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "tags":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "publisher":   {"type": "keyword"},
      "is_paid":     {"type": "boolean"},
      "date":        {"type": "date"}
    }
  }
}`

const requestTimeout = 3 * time.Second

// ArticleIndex keeps approved articles searchable. Only teaser fields are indexed,
// so paid bodies never leave the database through search.
type ArticleIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewArticleIndex(es *elasticsearch.Client, index string) *ArticleIndex {
	return &ArticleIndex{ES: es, IndexName: index}
}

// Ensure creates the index on first start.
func (x *ArticleIndex) Ensure(ctx context.Context) error {
	return helpers.EnsureIndex(ctx, x.ES, x.IndexName, ArticlesMapping)
}

type articleDoc struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Publisher   string   `json:"publisher"`
	IsPaid      bool     `json:"is_paid"`
	Date        string   `json:"date"`
}

func (x *ArticleIndex) Index(ctx context.Context, a *entity.Article) error {
	b, err := json.Marshal(articleDoc{
		Title:       a.Title,
		Description: a.Description,
		Tags:        a.Tags,
		Publisher:   a.Publisher.Name,
		IsPaid:      a.IsPaid,
		Date:        a.Date.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index article %s: %s", a.ID, res.Status())
	}
	return nil
}

// Remove deletes the document; a missing document is not an error.
func (x *ArticleIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove article %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title, description and tags and returns ids by score.
func (x *ArticleIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "tags"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search articles: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
