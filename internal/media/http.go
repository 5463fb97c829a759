// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-media/internal/platform/constants"
	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-media/internal/platform/request"
	"github.com/taibuivan/yomira-media/internal/platform/respond"
	"github.com/taibuivan/yomira-media/internal/platform/storeerr"
	"github.com/taibuivan/yomira-media/internal/platform/validate"
	"github.com/taibuivan/yomira-media/internal/storage"
	"github.com/taibuivan/yomira-media/pkg/convert"
)

// resourceFile names the thing a 404 refers to.
const resourceFile = "File"

// # Handler Implementation

// Handler implements the HTTP layer for single files.
type Handler struct {
	service *Service
}

// NewHandler constructs a new media [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches upload, removal, serving and listing endpoints.
//
// Listing routes are static ("files") and win over the {name} wildcard, so a
// logical name "files" cannot be fetched under those prefixes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/upload", handler.Upload)
	router.Delete("/remove", handler.Remove)

	router.Get("/image/{name}", handler.ServeImage)

	router.Get("/user/{id}/files", handler.list(storage.KindUser))
	router.Get("/user/{id}/{name}", handler.serve(storage.KindUser))

	router.Get("/assets/files", handler.list(storage.KindAssets))
	router.Get("/assets/{name}", handler.serve(storage.KindAssets))

	router.Get("/series/{id}/files", handler.list(storage.KindSeries))
	router.Get("/series/{id}/{name}", handler.serve(storage.KindSeries))
	router.Get("/series/{id}/assets/files", handler.list(storage.KindSeriesAssets))
	router.Get("/series/{id}/assets/{name}", handler.serve(storage.KindSeriesAssets))
	router.Get("/series/{id}/chapters/{cap}/{name}", handler.serve(storage.KindSeriesChapter))
}

// # Upload

/*
POST /upload.

Description: Stores one file under a logical name. Any earlier variant of
that name with a different extension is removed.

Request (multipart/form-data):
  - name: string (logical name, required)
  - type: user | assets | series | series-assets (required)
  - id: string (required unless type=assets)
  - file: the file part

Response:
  - 200: {message, file: "/series/7/cover.jpg"}
  - 400: VALIDATION_ERROR/PATH_ESCAPE: Missing, unknown or unsafe fields
  - 413: PAYLOAD_TOO_LARGE: Body over the upload cap
  - 500: INTERNAL_ERROR: The file could not be moved into place
*/
func (handler *Handler) Upload(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	target := Target{
		Kind: storage.Kind(requestutil.Value(request, constants.FormFieldType)),
		ID:   requestutil.Value(request, constants.FormFieldID),
		Name: requestutil.Value(request, constants.FormFieldName),
	}
	if err := validateTarget(target); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, header, err := requestutil.FormFile(request, constants.FormFieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	stored, err := handler.service.Upload(request.Context(), Upload{
		Target:       target,
		OriginalName: header.Filename,
		Body:         file,
	})
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
		return
	}

	respond.Message(writer, "Upload completed successfully", constants.FieldFile, stored)
}

// # Removal

// removeRequest is the JSON flavour of a removal.
type removeRequest struct {
	Name convert.Text `json:"name"`
	Type convert.Text `json:"type"`
	ID   convert.Text `json:"id"`
}

/*
DELETE /remove.

Description: Deletes the current variant of a logical name.

Request (JSON body, form body or query string):
  - name: string
  - type: user | assets | series | series-assets
  - id: string (required unless type=assets)

Response:
  - 200: {message, file: "/user/1/avatar.png"}
  - 400: VALIDATION_ERROR: Missing or unknown fields
  - 404: NOT_FOUND: No variant exists; nothing was changed
*/
func (handler *Handler) Remove(writer http.ResponseWriter, request *http.Request) {
	target, err := removeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := validateTarget(target); err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.Remove(request.Context(), target)
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
		return
	}

	respond.Message(writer, "File removed successfully", constants.FieldFile, removed)
}

// removeTarget reads name, type and id from whichever encoding the client used.
func removeTarget(request *http.Request) (Target, error) {
	if requestutil.IsJSON(request) {
		var input removeRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			return Target{}, err
		}
		return Target{
			Kind: storage.Kind(input.Type.String()),
			ID:   input.ID.String(),
			Name: input.Name.String(),
		}, nil
	}

	fields, err := requestutil.Fields(request)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Kind: storage.Kind(trimmed(fields.Get(constants.FormFieldType))),
		ID:   trimmed(fields.Get(constants.FormFieldID)),
		Name: trimmed(fields.Get(constants.FormFieldName)),
	}, nil
}

// validateTarget runs the field checks shared by upload and removal.
func validateTarget(target Target) error {
	v := &validate.Validator{}
	v.Required(constants.FormFieldName, target.Name).MaxLen(constants.FormFieldName, target.Name, constants.MaxNameLength)
	v.Required(constants.FormFieldType, string(target.Kind))
	if target.Kind != "" {
		v.OneOf(constants.FormFieldType, string(target.Kind), storage.UploadKinds...)
		v.Custom(constants.FormFieldID, target.Kind.RequiresID() && target.ID == "", "Required unless type is assets")
	}
	return v.Err()
}

// # Serving

/*
GET /image/{name}.

Description: Serves a file from the shared image directory by logical name.

Response:
  - 200: File contents
  - 404: NOT_FOUND
*/
func (handler *Handler) ServeImage(writer http.ResponseWriter, request *http.Request) {
	path, err := handler.service.LocateImage(requestutil.Param(request, "name"))
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
		return
	}
	handler.sendFile(writer, request, path)
}

/*
GET /{kind path}/{name}.

Description: Serves the current variant of a logical name, or an exact
stored file name such as a chapter page.

Response:
  - 200: File contents (Range and conditional requests supported)
  - 400: PATH_ESCAPE: Unsafe id or name
  - 404: NOT_FOUND
*/
func (handler *Handler) serve(kind storage.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		path, err := handler.service.Locate(Target{
			Kind:       kind,
			ID:         requestutil.Param(request, "id"),
			ChapterKey: requestutil.Param(request, "cap"),
			Name:       requestutil.Param(request, "name"),
		})
		if err != nil {
			respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
			return
		}
		handler.sendFile(writer, request, path)
	}
}

// sendFile streams path with content type, ranges and Last-Modified.
func (handler *Handler) sendFile(writer http.ResponseWriter, request *http.Request, path string) {
	file, err := handler.service.store.Fs().Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Removed between lookup and open.
		err = fmt.Errorf("%w: %w", storage.ErrNotFound, err)
	}
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
		return
	}

	ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "media_file_served",
		slog.String("path", path),
		slog.Int64("bytes", info.Size()),
	)
	http.ServeContent(writer, request, filepath.Base(path), info.ModTime(), file)
}

// # Listing

/*
GET /{kind path}/files.

Description: Lists every stored file of a kind and id.

Response:
  - 200: {message, files: []StoredFile} (empty when nothing was uploaded)
  - 400: PATH_ESCAPE: Unsafe id
*/
func (handler *Handler) list(kind storage.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		files, err := handler.service.List(request.Context(), kind, requestutil.Param(request, "id"))
		if err != nil {
			respond.Error(writer, request, storeerr.Wrap(err, resourceFile))
			return
		}
		respond.Message(writer, "Files listed successfully", constants.FieldFiles, files)
	}
}

func trimmed(value string) string {
	return convert.Text(value).String()
}
