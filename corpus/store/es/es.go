package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/mycok/kwScout/corpus/index"
)

// Static and compile-time check to ensure ElasticsearchIndex implements
// Indexer.
var _ index.Indexer = (*ElasticsearchIndex)(nil)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// The name of the elasticsearch index to use.
const indexName = "corpus"

// JSON data structure that defines the properties of an elasticsearch
// document.
var esMappings = `
{
  "mappings" : {
    "properties": {
      "ContentID": {"type": "keyword"},
      "URL": {"type": "keyword"},
      "Rank": {"type": "integer"},
      "Title": {"type": "text"},
      "Path": {"type": "keyword"},
      "Content": {"type": "text"},
      "Length": {"type": "integer"},
      "IndexedAt": {"type": "date"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	ContentID string    `json:"ContentID"`
	URL       string    `json:"URL"`
	Rank      int       `json:"Rank"`
	Title     string    `json:"Title"`
	Path      string    `json:"Path"`
	Content   string    `json:"Content"`
	Length    int       `json:"Length"`
	IndexedAt time.Time `json:"IndexedAt"`
}

type esUpdateRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// ElasticsearchIndex is an Indexer implementation that uses elasticsearch
// to index / catalogue and search content documents.
type ElasticsearchIndex struct {
	client      *elasticsearch.Client
	refreshOpts func(*esapi.UpdateRequest)
}

// NewEsIndexer instantiates and returns an index that
// uses an elasticsearch instance to index and query documents.
func NewEsIndexer(
	esNodes []string, shouldSyncUpdates bool,
) (*ElasticsearchIndex, error) {

	cfg := elasticsearch.Config{
		Addresses: esNodes,
	}

	c, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err = initIndex(c); err != nil {
		return nil, err
	}

	refreshOpts := c.Update.WithRefresh("false")

	if shouldSyncUpdates {
		refreshOpts = c.Update.WithRefresh("true")
	}

	return &ElasticsearchIndex{
		client:      c,
		refreshOpts: refreshOpts,
	}, nil
}

// Index adds a new document or updates an existing index entry
// in case of an existing document.
func (s *ElasticsearchIndex) Index(doc *index.Document) error {
	if doc.ID == uuid.Nil {
		return fmt.Errorf("index: %w", index.ErrMissingID)
	}

	doc.IndexedAt = time.Now().UTC()

	var (
		buf   bytes.Buffer
		esDoc = makeEsDoc(doc)
	)

	forUpdate := map[string]interface{}{
		"doc":           esDoc,
		"doc_as_upsert": true,
	}

	if err := json.NewEncoder(&buf).Encode(forUpdate); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	res, err := s.client.Update(indexName, esDoc.ContentID, &buf, s.refreshOpts)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	return nil
}

// FindByID looks up a document by its content ID.
func (s *ElasticsearchIndex) FindByID(id uuid.UUID) (*index.Document, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"ContentID": id.String(),
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := performSearch(s.client, query)
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	if len(searchRes.Hits.HitList) == 0 {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return esDocToDoc(&searchRes.Hits.HitList[0].DocSource), nil
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise. Results are ordered by
// ascending page rank, ties broken by relevance score.
func (s *ElasticsearchIndex) Search(q index.Query) (index.Iterator, error) {
	var queryType string

	switch q.Type {
	case index.QueryTypePhrase:
		queryType = "phrase"
	default:
		queryType = "best_fields"
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"type":   queryType,
				"query":  q.Expression,
				"fields": []string{"Title", "Content"},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"Rank": map[string]interface{}{"order": "asc"}},
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
		},
		"from": q.Offset,
		"size": batchSize,
	}

	searchRes, err := performSearch(s.client, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return newEsIterator(s.client, query, searchRes, q.Offset), nil
}

func performSearch(
	client *elasticsearch.Client, query map[string]interface{},
) (*esSearchRes, error) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	// Perform the search.
	res, err := client.Search(
		client.Search.WithContext(context.Background()),
		client.Search.WithIndex(indexName),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func initIndex(client *elasticsearch.Client) error {
	mappingsReader := strings.NewReader(esMappings)

	res, err := client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(mappingsReader),
	)
	// For cases where index creation fails due to client issues,
	// ie network connection issues.
	if err != nil {
		return fmt.Errorf("failed to create ES index: %w", err)
	}

	// For cases where index creation fails due to other issues, ie invalid params.
	if res.IsError() {
		err = unMarshalError(res)

		esErr, isEsError := err.(esError)
		if isEsError && esErr.Type == "resource_already_exists_exception" {
			return nil
		}

		return fmt.Errorf("failed to create ES index: %w", err)
	}

	return nil
}

func unMarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer func() {
		res.Body.Close()
	}()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func esDocToDoc(doc *esDoc) *index.Document {
	return &index.Document{
		ID:        uuid.MustParse(doc.ContentID),
		URL:       doc.URL,
		Rank:      doc.Rank,
		Title:     doc.Title,
		Path:      doc.Path,
		Content:   doc.Content,
		Length:    doc.Length,
		IndexedAt: doc.IndexedAt.UTC(),
	}
}

func makeEsDoc(doc *index.Document) esDoc {
	return esDoc{
		ContentID: doc.ID.String(),
		URL:       doc.URL,
		Rank:      doc.Rank,
		Title:     doc.Title,
		Path:      doc.Path,
		Content:   doc.Content,
		Length:    doc.Length,
		IndexedAt: doc.IndexedAt.UTC(),
	}
}
