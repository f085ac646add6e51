// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/pkg/slug"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

const (
	// maxSlugLen bounds the human-readable part of a generated name.
	maxSlugLen = 64

	// suffixLen is the number of random hex characters appended after the timestamp.
	suffixLen = 8

	// fallbackSlug is used when the original file name has no usable characters.
	fallbackSlug = "cover"
)

// NewName generates a fresh, collision-resistant asset name:
//
//	<slug of original base name>_<unix millis><random hex>.webp
//
// Two uploads of the same file in the same millisecond still differ by suffix.
func NewName(originalName string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	prefix := slug.Truncate(slug.From(base), maxSlugLen)
	if prefix == "" {
		prefix = fallbackSlug
	}

	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + randomSuffix() + constants.CanonicalExtension
}

// randomSuffix takes the tail of a UUIDv7, which is its random section.
func randomSuffix() string {
	id := strings.ReplaceAll(uuid.New(), "-", "")
	return id[len(id)-suffixLen:]
}

// ValidName reports whether name is a bare canonical asset name with no path
// components. Stores refuse anything else.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return strings.HasSuffix(name, constants.CanonicalExtension)
}

// URL builds the public reference for an asset name.
func URL(publicBaseURL, name string) string {
	return strings.TrimRight(publicBaseURL, "/") + constants.ImagesPath + "/" + url.PathEscape(name)
}

// NameFromURL recovers the asset name from a reference produced by [URL].
// Only the last path segment after the images prefix is used, so a change of
// PUBLIC_BASE_URL does not orphan existing assets.
func NameFromURL(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", apperr.Internal(err)
	}

	dir, file := path.Split(parsed.Path)
	if !strings.HasSuffix(strings.TrimSuffix(dir, "/"), constants.ImagesPath) {
		return "", apperr.ValidationError("Image URL is not a stored cover")
	}

	if !ValidName(file) {
		return "", apperr.ValidationError("Image URL is not a stored cover")
	}

	return file, nil
}
