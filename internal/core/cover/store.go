// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"context"

	"github.com/taibuivan/bookshelf/internal/platform/metrics"
)

// # Asset Storage Contract

// AssetStore persists canonical covers addressed by generated name.
//
// Implementations must treat names as opaque and reject anything for which
// [ValidName] is false. Errors are returned as STORAGE_ERROR app errors.
type AssetStore interface {

	/*
		Put writes the bytes under name, replacing nothing: names are unique.

		Parameters:
		  - ctx: context.Context
		  - name: string (from [NewName])
		  - body: []byte
		  - contentType: string

		Returns:
		  - error: Storage failures
	*/
	Put(ctx context.Context, name string, body []byte, contentType string) error

	/*
		Delete removes the named asset. Deleting a missing asset succeeds.

		Parameters:
		  - ctx: context.Context
		  - name: string

		Returns:
		  - error: Storage failures
	*/
	Delete(ctx context.Context, name string) error

	/*
		Exists reports whether the named asset is present.

		Parameters:
		  - ctx: context.Context
		  - name: string

		Returns:
		  - bool: true when present
		  - error: Storage failures
	*/
	Exists(ctx context.Context, name string) (bool, error)
}

// Asset store operation labels.
const (
	OpPut    = "put"
	OpDelete = "delete"
	OpExists = "exists"
)

// instrumentedStore records every call in the asset operation counters.
type instrumentedStore struct {
	next AssetStore
}

// Instrument wraps store so that each operation is counted by outcome.
func Instrument(store AssetStore) AssetStore {
	return &instrumentedStore{next: store}
}

func (s *instrumentedStore) Put(ctx context.Context, name string, body []byte, contentType string) error {
	err := s.next.Put(ctx, name, body, contentType)
	metrics.ObserveAsset(OpPut, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, name string) error {
	err := s.next.Delete(ctx, name)
	metrics.ObserveAsset(OpDelete, err)
	return err
}

func (s *instrumentedStore) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := s.next.Exists(ctx, name)
	metrics.ObserveAsset(OpExists, err)
	return exists, err
}
