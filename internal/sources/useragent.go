package sources

import (
	"fmt"
	"strings"
)

const (
	productName    = "crate"
	productVersion = "1.0"
)

// UserAgent builds the identifying User-Agent header sent to every
// provider. contact is appended when set, as the Wikimedia API policy
// requires a reachable operator.
func UserAgent(contact string) string {
	ua := fmt.Sprintf("%s/%s", productName, productVersion)
	if contact = strings.TrimSpace(contact); contact != "" {
		ua = fmt.Sprintf("%s (%s)", ua, contact)
	}
	return ua
}
