// Package sanitize cleans user-supplied free text before it is stored.
// Output is safe to render as HTML.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// Text keeps the safe formatting subset of user generated HTML.
func Text(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
