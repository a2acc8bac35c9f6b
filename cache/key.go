package cache

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Key derives a deterministic cache key from the query and the context
// that shaped the result set. The query is normalized first so trivial
// whitespace and casing differences share an entry; topK and the caller
// city are part of the key because they change the results.
func Key(query string, topK int, city string) string {
	normalized := normalizeQuery(query)
	material := fmt.Sprintf("%s|k=%d|city=%s", normalized, topK, city)

	h, _ := blake2b.New(16, nil)
	h.Write([]byte(material))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeQuery trims, lowercases, and collapses internal whitespace.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
