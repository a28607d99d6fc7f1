package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// assetKeyRegex matches valid store keys: a UUID followed by an optional
// lowercase extension suffix, e.g. "7f3c...-....png".
var assetKeyRegex = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}(\.[a-z0-9]{1,8})?$`)

// ValidateAssetKey validates an asset store key.
// Keys are minted by the store itself, so anything that fails this check
// arrived from an untrusted archive and must be rejected before it can be
// used as a container entry name.
func ValidateAssetKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidRef, "asset key cannot be empty")
	}

	if len(key) > 64 {
		return New(ErrCodeInvalidRef, "asset key too long (max 64 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRef, "asset key contains control characters")
		}
	}

	if !assetKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidRef, "malformed asset key: %q", key)
	}

	return nil
}

// ValidateEntryName validates a container entry name read from an archive.
// It prevents zip-slip style path traversal when entries are expanded.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateEntryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "entry name cannot be empty")
	}

	const maxEntryLength = 500
	if len(name) > maxEntryLength {
		return New(ErrCodeInvalidPath, "entry name too long (max %d characters)", maxEntryLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "entry name contains invalid characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPath, "entry name must be relative (cannot start with /)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "entry name cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPath, "entry name cannot contain backslashes")
	}

	return nil
}

// ValidateArchivePath validates a user-supplied archive filesystem path.
// It rejects empty paths and embedded null bytes; everything else is the
// operating system's business.
func ValidateArchivePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "archive path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "archive path contains null bytes")
	}

	return nil
}

// ValidateProjectTitle validates a project title for serialization.
// Titles are free text but must not contain control characters that could
// corrupt manifests or document metadata.
func ValidateProjectTitle(title string) error {
	const maxTitleLength = 512
	if len(title) > maxTitleLength {
		return New(ErrCodeValidation, "project title too long (max %d characters)", maxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) && r != '\n' {
			return New(ErrCodeValidation, "project title contains control characters")
		}
	}

	return nil
}
