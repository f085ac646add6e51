// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid issues the identifiers used for books, accounts and request
// correlation. They are version 7, so primary keys are roughly
// insertion-ordered and B-tree indexes stay compact.
package uuid

import "github.com/google/uuid"

// New returns a random v7 UUID in canonical form. It panics only if the
// system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid accepts any UUID version. Path parameters are checked with it before
// they reach a uuid-typed column.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
