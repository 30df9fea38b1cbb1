// Package htmlutil derives plain text from rendered HTML, used for
// the text/plain alternative part of outgoing newsletter email.
package htmlutil

import (
	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text. Entities are decoded, tags are
// stripped, and block structure becomes line breaks.
func ToText(s string) string {
	return html2text.HTML2Text(s)
}
