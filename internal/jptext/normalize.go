package jptext

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	cidArtifact = regexp.MustCompile(`\(cid:\d+\)`)
	controlRun  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]+")
	spaceRun    = regexp.MustCompile(`[\s\x{3000}]+`)
)

// Normalize folds full-width digits and punctuation to their ASCII
// forms, strips PDF extraction artifacts like "(cid:123)", removes
// control characters and collapses whitespace runs (including the
// ideographic space) to a single space. Idempotent.
func Normalize(s string) string {
	s = cidArtifact.ReplaceAllString(s, "")
	s = controlRun.ReplaceAllString(s, "")
	s = width.Fold.String(s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
