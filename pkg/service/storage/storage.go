// Package storage keeps uploaded files until the ingestion pipeline consumes them.
package storage

import (
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidKey = goerr.New("invalid storage key")

// cleanKey rejects keys that would escape the storage root
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", goerr.Wrap(ErrInvalidKey, "key must be a relative slash separated path", goerr.V("key", key))
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", goerr.Wrap(ErrInvalidKey, "key escapes storage root", goerr.V("key", key))
	}
	return cleaned, nil
}
