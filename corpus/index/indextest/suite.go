package indextest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/kwScout/corpus/index"
)

// BaseSuite defines a set of re-usable index related tests that can
// be executed against any concrete type that implements the
// index.Indexer interface.
type BaseSuite struct {
	idx index.Indexer
}

// SetIndex sets BaseSuite's index field.
func (s *BaseSuite) SetIndex(index index.Indexer) {
	s.idx = index
}

// TestIndexingDocument verifies the indexing logic for new and existing
// documents.
func (s *BaseSuite) TestIndexingDocument(c *check.C) {
	// Upsert new document.
	doc := &index.Document{
		ID:        uuid.New(),
		URL:       "https://example.com",
		Rank:      3,
		Title:     "test document title",
		Path:      "html > body > p",
		Content:   "This should be the text of the content block",
		Length:    44,
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Update existing document.
	updatedDoc := &index.Document{
		ID:      doc.ID,
		URL:     doc.URL,
		Rank:    doc.Rank,
		Title:   "This is an updated document title",
		Path:    "html > body > div#main > p",
		Content: "This is an updated content block",
		Length:  32,
	}

	err = s.idx.Index(updatedDoc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index update++++: %v", err),
	)

	// Query the index to verify the update process.
	d, err := s.idx.FindByID(updatedDoc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(d, check.DeepEquals, updatedDoc)

	// Insert a document without an ID.
	docWithoutID := &index.Document{
		URL: "https://example.com",
	}

	err = s.idx.Index(docWithoutID)
	c.Assert(
		errors.Is(err, index.ErrMissingID), check.Equals, true,
		check.Commentf("++++Index insert++++: %v", err),
	)
}

// TestFindByID verifies the document lookup logic.
func (s *BaseSuite) TestFindByID(c *check.C) {
	// Upsert new document.
	doc := &index.Document{
		ID:      uuid.New(),
		URL:     "https://example.com",
		Rank:    1,
		Title:   "test document title",
		Path:    "html > body > p",
		Content: "This should be the text of the content block",
		Length:  44,
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Perform a doc lookup to verify the insert logic.
	retrievedDoc, err := s.idx.FindByID(doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(retrievedDoc, check.DeepEquals, doc, check.Commentf("document returned by FindByID does not match the inserted document"))

	// Perform a doc lookup for a non existing id.
	_, err = s.idx.FindByID(uuid.New())
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

// TestPhraseSearch verifies the document search logic when searching for
// exact phrases. Results must come back in ascending page-rank order.
func (s *BaseSuite) TestPhraseSearch(c *check.C) {
	var (
		numOfDocs   = 50
		expectedIDs []uuid.UUID
	)

	for i := 0; i < numOfDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			ID:      id,
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Rank:    numOfDocs - i,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Path:    "html > body > p",
			Content: "This block should stand in for page text",
		}

		// Every fifth document carries the searched-for phrase. Their
		// ranks descend with the insertion order, so the expected result
		// order is the reverse of the insertion order.
		if i%5 == 0 {
			doc.Content = "Updated tariff analysis block"
			expectedIDs = append([]uuid.UUID{id}, expectedIDs...)
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "Updated tariff analysis block",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search full-text / phrase++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs)
}

// TestKeywordMatchSearch verifies the document search logic when
// searching for keyword matches.
func (s *BaseSuite) TestKeywordMatchSearch(c *check.C) {
	var (
		numOfDocs   = 50
		expectedIDs []uuid.UUID
	)

	for i := 0; i < numOfDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			ID:      id,
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Rank:    numOfDocs - i,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Path:    "html > body > p",
			Content: "This block should stand in for page text",
		}

		if i%5 == 0 {
			doc.Content = "Updated tariff analysis block"
			expectedIDs = append([]uuid.UUID{id}, expectedIDs...)
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "tariff",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs)
}

// TestKeywordMatchSearchWithOffset verifies the document search logic
// when searching for keyword matches and skipping some results.
func (s *BaseSuite) TestKeywordMatchSearchWithOffset(c *check.C) {
	var (
		numOfDocs   = 50
		expectedIDs []uuid.UUID
	)

	for i := 0; i < numOfDocs; i++ {
		id := uuid.New()
		expectedIDs = append(expectedIDs, id)

		doc := &index.Document{
			ID:      id,
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Rank:    i + 1,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Path:    "html > body > p",
			Content: "This block should stand in for page text",
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "block",
		Offset:     20,
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs[20:])

	// Search with offset above the total number of results.
	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "block",
		Offset:     200,
	})

	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 0)
}

// iterateDocs drains the provided iterator and returns the IDs of the
// documents it produced in order.
func iterateDocs(c *check.C, it index.Iterator) []uuid.UUID {
	var seen []uuid.UUID

	for it.Next() {
		seen = append(seen, it.Document().ID)
	}

	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return seen
}
