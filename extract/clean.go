package extract

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// Cleaner normalizes raw block text into the form the quality filter and
// the stored corpus operate on: residual markup stripped, HTML entities
// decoded, control and other non-printable characters dropped and runs of
// whitespace collapsed into single spaces.
type Cleaner struct {
	policyPool sync.Pool
}

// NewCleaner returns a ready to use Cleaner. It is safe for concurrent use.
func NewCleaner() *Cleaner {
	return &Cleaner{
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}
}

// Clean returns the normalized form of text.
func (c *Cleaner) Clean(text string) string {
	policy := c.policyPool.Get().(*bluemonday.Policy)

	// Decoding entities first exposes markup smuggled through escaped
	// text so the sanitizer can strip it. The sanitizer escapes its own
	// output, hence the second decode.
	cleaned := html.UnescapeString(policy.Sanitize(html.UnescapeString(text)))

	c.policyPool.Put(policy)

	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return ' '
		}

		return r
	}, cleaned)

	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(cleaned, " "))
}
