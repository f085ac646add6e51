// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/metrics"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
	"github.com/taibuivan/bookshelf/pkg/pointer"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// # Contracts & Types

// Transcoder turns a staged upload into a canonical cover.
type Transcoder interface {
	Transcode(ctx context.Context, upload *cover.Upload) (*cover.Asset, error)
}

// Settings are the service knobs that come from configuration.
type Settings struct {
	// PublicBaseURL prefixes every cover URL.
	PublicBaseURL string

	// AssetTimeout bounds each transcode, store and cleanup step.
	AssetTimeout time.Duration
}

// Service orchestrates the book lifecycle.
//
// # Ordering
//
// Covers are written before the record that references them and removed only
// after the record no longer does. A failure in between can leave an
// unreferenced cover behind, which is logged and counted, but never a record
// whose cover is missing.
type Service struct {
	repo       Repository
	assets     cover.AssetStore
	transcoder Transcoder
	cache      TopRatedCache
	settings   Settings
	logger     *slog.Logger
}

// NewService constructs a [Service]. A nil cache disables caching.
func NewService(
	repo Repository,
	assets cover.AssetStore,
	transcoder Transcoder,
	cache TopRatedCache,
	settings Settings,
	logger *slog.Logger,
) *Service {
	if cache == nil {
		cache = NoopTopRatedCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if settings.AssetTimeout <= 0 {
		settings.AssetTimeout = 15 * time.Second
	}
	return &Service{
		repo:       repo,
		assets:     assets,
		transcoder: transcoder,
		cache:      cache,
		settings:   settings,
		logger:     logger,
	}
}

// log prefers the request-scoped logger when one is attached to ctx.
func (service *Service) log(ctx context.Context) *slog.Logger {
	return ctxutil.LoggerOr(ctx, service.logger)
}

// # Queries

// List returns every book.
func (service *Service) List(ctx context.Context) ([]*Book, error) {
	return service.repo.List(ctx)
}

// Get returns one book. Malformed IDs are reported as not found.
func (service *Service) Get(ctx context.Context, id string) (*Book, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Book")
	}
	return service.repo.Get(ctx, id)
}

// TopRated returns the best-rated books, served from cache when possible.
func (service *Service) TopRated(ctx context.Context, limit int) ([]*Book, error) {
	cached, hit, err := service.cache.Get(ctx, limit)
	if err != nil {
		service.log(ctx).Warn("top_rated_cache_read_failed", slog.Any("error", err))
	}
	if hit {
		return cached, nil
	}

	books, err := service.repo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := service.cache.Set(ctx, limit, books); err != nil {
		service.log(ctx).Warn("top_rated_cache_write_failed", slog.Any("error", err))
	}
	return books, nil
}

// # Create

/*
Create validates the metadata, stores the canonical cover and persists the book.

Parameters:
  - ctx: context.Context
  - actor: string (authenticated user ID, becomes the owner)
  - meta: Metadata
  - upload: *cover.Upload (required; discarded before returning)

Returns:
  - *Book: The persisted book
  - error: VALIDATION_ERROR, TRANSCODE_ERROR or STORAGE_ERROR. On any error
    no record exists and no cover is left referenced.
*/
func (service *Service) Create(ctx context.Context, actor string, meta Metadata, upload *cover.Upload) (*Book, error) {
	defer service.discard(ctx, upload)

	if upload == nil {
		return nil, validate.Field(FieldImage, "Image is required")
	}

	if err := validateFields(meta.Title, meta.Author, meta.Genre, meta.Year); err != nil {
		return nil, err
	}

	ratings, average, err := SeedRatings(actor, meta.Ratings)
	if err != nil {
		return nil, err
	}

	name, err := service.storeCover(ctx, upload)
	if err != nil {
		return nil, err
	}

	created := &Book{
		ID:            uuid.New(),
		UserID:        actor,
		Title:         meta.Title,
		Author:        meta.Author,
		Year:          meta.Year,
		Genre:         meta.Genre,
		ImageURL:      cover.URL(service.settings.PublicBaseURL, name),
		Ratings:       ratings,
		AverageRating: average,
	}

	if err := service.repo.Create(ctx, created); err != nil {
		service.removeCover(ctx, name, metrics.CleanupCompensated)
		return nil, err
	}

	service.invalidate(ctx)
	service.log(ctx).Info("book_created",
		slog.String("book_id", created.ID),
		slog.String("user_id", actor),
		slog.String("asset", name),
	)

	return created, nil
}

// # Update

/*
Update applies patch and, when upload is given, replaces the cover.

The new cover is stored first, then the record is pointed at it, then the
old cover is removed. If the record update fails the new cover is removed and
the old record is left untouched.

The ownership check, the patch and the write run against the record as it is
stored at write time, so the cover removed is always the one the record last
referenced. The returned book is the stored result, ratings included.

Returns:
  - *Book: The updated book
  - error: NOT_FOUND, FORBIDDEN (nothing changed), VALIDATION_ERROR,
    TRANSCODE_ERROR or STORAGE_ERROR
*/
func (service *Service) Update(ctx context.Context, actor, id string, patch Patch, upload *cover.Upload) (*Book, error) {
	defer service.discard(ctx, upload)

	// Fail fast before transcoding; the checks are repeated under the lock.
	current, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureOwner(current, actor); err != nil {
		return nil, err
	}
	if _, err := applyPatch(current, patch); err != nil {
		return nil, err
	}

	var newName string
	if upload != nil {
		newName, err = service.storeCover(ctx, upload)
		if err != nil {
			return nil, err
		}
	}

	var replaced string
	updated, err := service.repo.Update(ctx, id, func(latest *Book) (*Book, error) {
		if err := EnsureOwner(latest, actor); err != nil {
			return nil, err
		}
		next, err := applyPatch(latest, patch)
		if err != nil {
			return nil, err
		}
		if newName != "" {
			replaced = latest.ImageURL
			next.ImageURL = cover.URL(service.settings.PublicBaseURL, newName)
		}
		return next, nil
	})
	if err != nil {
		if newName != "" {
			service.removeCover(ctx, newName, metrics.CleanupCompensated)
		}
		return nil, err
	}

	if replaced != "" {
		service.removeCoverByURL(ctx, replaced, metrics.CleanupReplaced)
	}

	service.invalidate(ctx)
	service.log(ctx).Info("book_updated",
		slog.String("book_id", id),
		slog.Bool("cover_replaced", newName != ""),
	)

	return updated, nil
}

// applyPatch returns a copy of current with the patch applied and validated.
func applyPatch(current *Book, patch Patch) (*Book, error) {
	next := current.clone()
	next.Title = pointer.Fallback(patch.Title, current.Title)
	next.Author = pointer.Fallback(patch.Author, current.Author)
	next.Year = pointer.Fallback(patch.Year, current.Year)
	next.Genre = pointer.Fallback(patch.Genre, current.Genre)

	if err := validateFields(next.Title, next.Author, next.Genre, next.Year); err != nil {
		return nil, err
	}
	return next, nil
}

// # Delete

/*
Delete removes the book and then its cover.

A cover that cannot be removed is logged and counted; the delete still
succeeds because the record no longer references it.

Returns:
  - error: NOT_FOUND, FORBIDDEN (nothing removed) or STORAGE_ERROR
*/
func (service *Service) Delete(ctx context.Context, actor, id string) error {
	current, err := service.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := EnsureOwner(current, actor); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.removeCoverByURL(ctx, current.ImageURL, metrics.CleanupDeleted)

	service.invalidate(ctx)
	service.log(ctx).Info("book_deleted", slog.String("book_id", id), slog.String("user_id", actor))
	return nil
}

// # Rating

/*
Rate records actor's grade for the book and returns the updated book.

The read, the aggregation and the write happen as one repository mutation,
so two concurrent raters can never lose each other's grade.

Returns:
  - *Book: The book including the new rating and average
  - error: VALIDATION_ERROR, DUPLICATE_RATING, NOT_FOUND or STORAGE_ERROR
*/
func (service *Service) Rate(ctx context.Context, actor, id string, grade int) (rated *Book, err error) {
	defer func() {
		rejected := apperr.HasCode(err, apperr.CodeValidation) || apperr.HasCode(err, apperr.CodeDuplicateRating)
		metrics.ObserveRating(rejected, err)
	}()

	if err := ValidateGrade(grade); err != nil {
		return nil, err
	}

	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Book")
	}

	rated, err = service.repo.MutateRatings(ctx, id, func(current *Book) (*Book, error) {
		return AddRating(current, actor, grade)
	})
	if err != nil {
		return nil, err
	}

	service.invalidate(ctx)
	service.log(ctx).Info("book_rated",
		slog.String("book_id", id),
		slog.String("user_id", actor),
		slog.Int("grade", grade),
		slog.Float64("average_rating", rated.AverageRating),
	)

	return rated, nil
}

// # Cover Helpers

// storeCover transcodes and stores the upload, bounded by the asset timeout.
func (service *Service) storeCover(ctx context.Context, upload *cover.Upload) (string, error) {
	assetCtx, cancel := context.WithTimeout(ctx, service.settings.AssetTimeout)
	defer cancel()

	asset, err := service.transcoder.Transcode(assetCtx, upload)
	if err != nil {
		return "", err
	}

	if err := service.assets.Put(assetCtx, asset.Name, asset.Body, asset.ContentType); err != nil {
		return "", err
	}

	return asset.Name, nil
}

// removeCover deletes an asset best-effort. It runs detached from the request
// deadline so a cancelled client does not strand the cleanup.
func (service *Service) removeCover(ctx context.Context, name, reason string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), service.settings.AssetTimeout)
	defer cancel()

	if err := service.assets.Delete(cleanupCtx, name); err != nil {
		metrics.CleanupFailed(reason)
		service.log(ctx).Warn("asset_cleanup_failed",
			slog.String("asset", name),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
	}
}

func (service *Service) removeCoverByURL(ctx context.Context, ref, reason string) {
	name, err := cover.NameFromURL(ref)
	if err != nil {
		metrics.CleanupFailed(reason)
		service.log(ctx).Warn("asset_cleanup_skipped",
			slog.String("image_url", ref),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		return
	}
	service.removeCover(ctx, name, reason)
}

// discard removes the staging file once the request is done with it.
func (service *Service) discard(ctx context.Context, upload *cover.Upload) {
	if err := upload.Discard(); err != nil {
		metrics.CleanupFailed(metrics.CleanupStaging)
		service.log(ctx).Warn("staging_discard_failed", slog.Any("error", err))
	}
}

func (service *Service) invalidate(ctx context.Context) {
	if err := service.cache.Invalidate(ctx); err != nil {
		service.log(ctx).Warn("top_rated_cache_invalidate_failed", slog.Any("error", err))
	}
}

// CheckAssets probes the asset backend for readiness. Looking up a name that
// never exists exercises connectivity without side effects.
func (service *Service) CheckAssets(ctx context.Context) error {
	_, err := service.assets.Exists(ctx, "readiness-probe.webp")
	return err
}
