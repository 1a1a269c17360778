package types

import (
	"crypto/md5" //nolint:gosec // identity key, not a security boundary
	"encoding/hex"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 12

// JobID derives the stable identity of a posting from its company, title and URL.
// The same triple always yields the same identity, which is what lets the status
// overlay and artifact bookkeeping survive re-screening.
func JobID(company, title, url string) string {
	sum := md5.Sum([]byte(company + "|" + title + "|" + url)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:idLength]
}
