// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// maxMetadataBytes bounds the JSON "book" form field.
const maxMetadataBytes = 64 << 10

// UploadSettings controls how multipart covers are staged.
type UploadSettings struct {
	// StagingDir receives uploads before transcoding (os.TempDir when empty).
	StagingDir string

	// MaxUploadBytes caps the image part.
	MaxUploadBytes int64
}

// # Handler Implementation

// Handler implements the HTTP layer for the catalog.
type Handler struct {
	service *Service
	uploads UploadSettings
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service, uploads UploadSettings) *Handler {
	if uploads.MaxUploadBytes <= 0 {
		uploads.MaxUploadBytes = constants.DefaultMaxUploadBytes
	}
	return &Handler{service: service, uploads: uploads}
}

// Routes returns a [chi.Router] configured with the catalog endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): listing, best-rated and detail.
//   - Mutations (Authenticated): create, rate. Update and delete are further
//     restricted to the creator inside the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listBooks)
	router.Get("/bestrating", handler.bestRating)
	router.Get("/{id}", handler.getBook)

	// ## Authenticated Endpoints
	router.Group(func(auth chi.Router) {
		auth.Use(middleware.RequireAuth)

		auth.Post("/", handler.createBook)
		auth.Put("/{id}", handler.updateBook)
		auth.Delete("/{id}", handler.deleteBook)
		auth.Post("/{id}/rating", handler.rateBook)
	})

	return router
}

/*
GET /api/v1/books.

Response:
  - 200: []Book
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, books)
}

/*
GET /api/v1/books/bestrating.

Response:
  - 200: []Book: At most three books, best average first
*/
func (handler *Handler) bestRating(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.TopRated(request.Context(), constants.TopRatedLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, books)
}

/*
GET /api/v1/books/{id}.

Response:
  - 200: Book
  - 404: ErrNotFound
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, found)
}

/*
POST /api/v1/books.

Description: Creates a book from a multipart form with a JSON "book" field
and an "image" file.

Response:
  - 201: {message, data: Book}
  - 400: Missing image, invalid metadata
  - 401: Authentication required
  - 422: Image could not be transcoded
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, err := handler.readForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var meta Metadata
	if err := decodeMetadata(form.metadata, &meta); err != nil {
		_ = form.upload.Discard()
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), actor, meta, form.upload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusCreated, "Book saved", created)
}

/*
PUT /api/v1/books/{id}.

Description: Updates metadata and optionally replaces the cover. Accepts the
same multipart form as create (image optional) or a plain JSON body.

Response:
  - 200: {message, data: Book}
  - 400: Invalid metadata
  - 403: Not the creator
  - 404: Book not found
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	var upload *cover.Upload

	if isMultipart(request) {
		form, err := handler.readForm(writer, request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		upload = form.upload

		if err := decodeMetadata(form.metadata, &patch); err != nil {
			_ = upload.Discard()
			respond.Error(writer, request, err)
			return
		}
	} else if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Update(request.Context(), actor, requestutil.ID(request, "id"), patch, upload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Book updated", updated)
}

/*
DELETE /api/v1/books/{id}.

Response:
  - 200: {message}
  - 403: Not the creator
  - 404: Book not found
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), actor, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Book deleted", nil)
}

// rateInput is the rating request body. The rater is always the caller;
// a user_id in the body is ignored.
type rateInput struct {
	Rating *int `json:"rating"`
}

/*
POST /api/v1/books/{id}/rating.

Request:
  - body: {"rating": 0..5}

Response:
  - 201: Book: Updated book with the new average
  - 400: Grade out of range
  - 403: Already rated
  - 404: Book not found
*/
func (handler *Handler) rateBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input rateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Rating == nil {
		respond.Error(writer, request, validate.Field(FieldGrade, "This field is required"))
		return
	}

	rated, err := handler.service.Rate(request.Context(), actor, requestutil.ID(request, "id"), *input.Rating)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusCreated, rated)
}

// # Multipart Parsing

// bookForm is the parsed create/update form. upload is nil when no image was sent.
type bookForm struct {
	metadata []byte
	upload   *cover.Upload
}

func isMultipart(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readForm streams the multipart body, spooling the image part straight to
// the staging directory instead of buffering it in memory.
func (handler *Handler) readForm(writer http.ResponseWriter, request *http.Request) (*bookForm, error) {
	if !isMultipart(request) {
		return nil, validate.Field(FieldImage, "Image is required")
	}

	request.Body = http.MaxBytesReader(writer, request.Body, handler.uploads.MaxUploadBytes+maxMetadataBytes+4096)

	reader, err := request.MultipartReader()
	if err != nil {
		return nil, apperr.ValidationError("Invalid multipart form")
	}

	form := &bookForm{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = form.upload.Discard()
			return nil, formError(err)
		}

		if err := handler.readPart(part, form); err != nil {
			_ = part.Close()
			_ = form.upload.Discard()
			return nil, err
		}
		_ = part.Close()
	}

	return form, nil
}

func (handler *Handler) readPart(part *multipart.Part, form *bookForm) error {
	switch part.FormName() {
	case FieldBook:
		data, err := io.ReadAll(io.LimitReader(part, maxMetadataBytes+1))
		if err != nil {
			return formError(err)
		}
		if len(data) > maxMetadataBytes {
			return validate.Field(FieldBook, "Book data is too large")
		}
		form.metadata = data

	case FieldImage:
		if form.upload != nil {
			return validate.Field(FieldImage, "Only one image may be uploaded")
		}
		upload, err := cover.Stage(handler.uploads.StagingDir, part.FileName(), part, handler.uploads.MaxUploadBytes)
		if err != nil {
			if requestutil.IsBodyTooLarge(err) {
				return formError(err)
			}
			return err
		}
		form.upload = upload
	}

	return nil
}

func formError(err error) error {
	if requestutil.IsBodyTooLarge(err) {
		return apperr.ValidationError("Request body is too large")
	}
	return apperr.ValidationError("Invalid multipart form")
}

// decodeMetadata parses the "book" form field. An absent field decodes as an
// empty object so field-level validation reports what is missing.
func decodeMetadata(data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, target); err != nil {
		return validate.Field(FieldBook, "Invalid book data")
	}
	return nil
}
