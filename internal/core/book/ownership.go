// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "github.com/taibuivan/bookshelf/internal/platform/apperr"

// IsOwner reports whether actor created b.
func IsOwner(b *Book, actor string) bool {
	return b != nil && actor != "" && b.UserID == actor
}

// EnsureOwner returns FORBIDDEN unless actor created b.
func EnsureOwner(b *Book, actor string) error {
	if !IsOwner(b, actor) {
		return apperr.Forbidden("Only the creator of this book may change it")
	}
	return nil
}
