package lock

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainContent is the domain prefix for content hashing.
// Version suffix enables future algorithm migration.
const DomainContent = "ctxlock/content/v1"

// HashPrefixLen is the number of hex characters shown in summaries.
const HashPrefixLen = 12

// ContentHash computes the content-addressed hash of locked text.
// Content is NFC-normalized before hashing so that visually identical
// text hashes identically regardless of Unicode composition.
//
// Format: SHA256(domain + 0x00 + NFC(content)), hex encoded.
// The null byte separator prevents domain/data boundary ambiguity.
func ContentHash(content string) string {
	h := sha256.New()
	h.Write([]byte(DomainContent))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(content)))
	return hex.EncodeToString(h.Sum(nil))
}

// HashPrefix returns the short display form of a content hash.
func HashPrefix(hash string) string {
	if len(hash) <= HashPrefixLen {
		return hash
	}
	return hash[:HashPrefixLen]
}
