package extract

import (
	"regexp"
	"unicode/utf8"
)

// minQualifyingWords is the number of alphabetic words of qualifying
// length a cleaned block must contain to count as real content.
const minQualifyingWords = 2

// qualifyingWordRegex matches an alphabetic word of at least three letters.
var qualifyingWordRegex = regexp.MustCompile(`[a-zA-Z]{3,}`)

// boilerplateSignatures reject cleaned blocks that are script or code
// fragments, cookie / privacy / terms notices, copyright marks or bare
// currency amounts rather than page content.
var boilerplateSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(function\s*\(|\bvar\s+\w+\s*=|document\.\w+|window\.\w+|javascript:)`),
	regexp.MustCompile(`(?i)\b(cookies?|privacy\s+policy|terms\s+(of|and)\s+(use|service|conditions))\b`),
	regexp.MustCompile(`(?i)(©|\(c\)\s*\d{4}|copyright|all\s+rights\s+reserved)`),
	regexp.MustCompile(`^[$€£¥]\s*\d[\d,.]*$`),
}

// passesQualityFilter reports whether a cleaned block qualifies as
// content: at least minLen characters long, free of boilerplate
// signatures and carrying at least two alphabetic words of three or more
// letters.
func passesQualityFilter(cleaned string, minLen int) bool {
	if utf8.RuneCountInString(cleaned) < minLen {
		return false
	}

	for _, signature := range boilerplateSignatures {
		if signature.MatchString(cleaned) {
			return false
		}
	}

	words := qualifyingWordRegex.FindAllString(cleaned, minQualifyingWords)

	return len(words) >= minQualifyingWords
}
