// Package fileid derives stable identifiers for roster sources.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	filePrefix    = "file:"
	urlPrefix     = "url:"
	contentPrefix = "sha256:"
)

// SourceID returns a stable ID for a workbook source. Local paths are cleaned
// and shared links are compared without their fragment or download flag, so
// the same roster always maps to the same ID.
func SourceID(source string) string {
	if isURL(source) {
		return urlPrefix + digest(normalizeURL(source))
	}
	return filePrefix + digest(filepath.Clean(source))
}

// ContentHash returns the hash of a downloaded or read workbook.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return contentPrefix + hex.EncodeToString(hash[:])
}

// IsURL reports whether source is an http(s) link rather than a path.
func IsURL(source string) bool {
	return isURL(source)
}

func isURL(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	q := u.Query()
	q.Del("download")
	u.RawQuery = q.Encode()
	return u.String()
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
