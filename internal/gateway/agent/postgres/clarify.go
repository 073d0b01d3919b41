package postgres

import "fmt"

// clarificationThreshold is how many consecutive safety-gate rejections
// trigger a clarifying question instead of a third generation attempt
// (§4.4 step 6).
const clarificationThreshold = 2

// ClarifyQuestion builds the structured clarifying question returned in
// place of an empty answer, either after repeated safety-gate rejections or
// a zero-row result with a high-confidence misunderstanding hint.
func ClarifyQuestion(question, hint string) string {
	return fmt.Sprintf("I couldn't confidently answer \"%s\". %s Could you rephrase or narrow the question?", question, hint)
}

// looksLikeMisunderstanding treats every zero-row result as a likely scope
// mismatch rather than a true empty answer (§4.4 step 6). The question text
// is not examined: no date or range check narrows which empty results count.
func looksLikeMisunderstanding(result *ResultSet) bool {
	return result != nil && len(result.Rows) == 0
}
