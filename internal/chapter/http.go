// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-media/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-media/internal/platform/request"
	"github.com/taibuivan/yomira-media/internal/platform/respond"
	"github.com/taibuivan/yomira-media/internal/platform/storeerr"
	"github.com/taibuivan/yomira-media/internal/platform/validate"
	"github.com/taibuivan/yomira-media/pkg/convert"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter pages.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the chapter endpoints to the root router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/upload-zip", handler.UploadZip)
	router.Post("/analyze-pages", handler.AnalyzePages)
}

// # Archive Upload

/*
POST /upload-zip.

Description: Replaces the pages of a chapter with the entries of a zip
archive. Pages are named with fresh identifiers and ordered as in the archive.

Request (multipart/form-data):
  - serieID: string
  - volume: string
  - index: string (chapter number)
  - file: zip archive

Response:
  - 200: {message, pages: []Page}
  - 400: VALIDATION_ERROR/PATH_ESCAPE: Missing or unsafe fields
  - 413: PAYLOAD_TOO_LARGE: Body over the upload cap
  - 500: ARCHIVE_ERROR: Unreadable archive or failed write
*/
func (handler *Handler) UploadZip(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	address := Address{
		SeriesID: requestutil.Value(request, constants.FormFieldSerieID),
		Volume:   requestutil.Value(request, constants.FormFieldVolume),
		Index:    requestutil.Value(request, constants.FormFieldIndex),
	}
	if err := validateAddress(address); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, header, err := requestutil.FormFile(request, constants.FormFieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	pages, err := handler.service.UploadArchive(request.Context(), address, file, header.Filename)
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, "Chapter"))
		return
	}

	respond.Message(writer, "Archive extracted successfully", constants.FieldPages, pages)
}

// # Page Reconciliation

// analyzePagesRequest defines the inbound JSON schema of a declared page list.
type analyzePagesRequest struct {
	SeriesID convert.Text `json:"serieID"`
	Volume   convert.Text `json:"volume"`
	Index    convert.Text `json:"index"`
	Pages    []PageInput  `json:"pages"`
}

/*
POST /analyze-pages.

Description: Synchronises a chapter directory to the declared page list.
Files not referenced by any page are deleted, inline images (data URIs) are
written under new names, and every page is returned with its size and
dimensions.

Request (application/json):
  - body: analyzePagesRequest

Response:
  - 200: {message, pages: []Page} sorted by order
  - 400: VALIDATION_ERROR: Missing fields or undecodable inline data
*/
func (handler *Handler) AnalyzePages(writer http.ResponseWriter, request *http.Request) {
	var input analyzePagesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	address := Address{
		SeriesID: input.SeriesID.String(),
		Volume:   input.Volume.String(),
		Index:    input.Index.String(),
	}
	if err := validateAddress(address); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Pages == nil {
		respond.Error(writer, request, validate.RequiredError(constants.FormFieldPages, "A page list is required"))
		return
	}

	pages, err := handler.service.AnalyzePages(request.Context(), address, input.Pages)
	if err != nil {
		respond.Error(writer, request, storeerr.Wrap(err, "Chapter"))
		return
	}

	respond.Message(writer, "Pages analyzed successfully", constants.FieldPages, pages)
}

// validateAddress checks the fields that name a chapter.
func validateAddress(address Address) error {
	v := &validate.Validator{}
	v.Required(constants.FormFieldSerieID, address.SeriesID)
	v.Required(constants.FormFieldVolume, address.Volume)
	v.Required(constants.FormFieldIndex, address.Index)
	return v.Err()
}
