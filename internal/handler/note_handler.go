package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
	"shellnote/internal/service"
)

// NoteHandler handles note CRUD. Create and update accept multipart forms so
// attachments ride along with the note fields in one request.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteListResponse wraps a note listing.
type NoteListResponse struct {
	Notes []model.Note `json:"notes"`
}

// NoteResponse wraps a single note.
type NoteResponse struct {
	Note *model.Note `json:"note"`
}

// NoteCreatedResponse reports the id of a newly created note.
type NoteCreatedResponse struct {
	ID uint `json:"id"`
}

// List godoc
// @Summary List the caller's notes
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "Category id, or 'none' for uncategorized notes"
// @Success 200 {object} NoteListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	notes, err := h.noteService.List(c.Request().Context(), userID, c.QueryParam("categoryId"))
	if err != nil {
		return respondError(c, err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return c.JSON(http.StatusOK, NoteListResponse{Notes: notes})
}

// Get godoc
// @Summary Fetch one note with its attachments
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note id"
// @Success 200 {object} NoteResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	noteID, err := parseIDParam(c, apperrors.ErrInvalidNoteID)
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.noteService.Get(c.Request().Context(), userID, noteID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, NoteResponse{Note: note})
}

// Create godoc
// @Summary Create a note, optionally with attachments
// @Tags notes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string false "Title; defaults to the current timestamp"
// @Param content formData string false "Note body"
// @Param theme formData string false "light or dark"
// @Param categoryId formData string false "Category id, or 'none'"
// @Param files formData file false "Attachments, up to 5"
// @Success 201 {object} NoteCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	input, uploads, err := readNoteForm(c)
	if err != nil {
		return respondError(c, err)
	}

	noteID, err := h.noteService.Create(c.Request().Context(), userID, input, uploads)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, NoteCreatedResponse{ID: noteID})
}

// Update godoc
// @Summary Update a note; new files are appended to its attachments
// @Tags notes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note id"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	noteID, err := parseIDParam(c, apperrors.ErrInvalidNoteID)
	if err != nil {
		return respondError(c, err)
	}
	input, uploads, err := readNoteForm(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.noteService.Update(c.Request().Context(), userID, noteID, input, uploads); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "note updated"})
}

// Delete godoc
// @Summary Delete a note with its attachments
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	noteID, err := parseIDParam(c, apperrors.ErrInvalidNoteID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.noteService.Delete(c.Request().Context(), userID, noteID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "note deleted"})
}

// readNoteForm collects the note fields and attachment headers from a
// multipart form. A request without files is also valid as a plain form.
func readNoteForm(c echo.Context) (service.NoteInput, []service.Upload, error) {
	input := service.NoteInput{
		Title:      c.FormValue("title"),
		Content:    c.FormValue("content"),
		Theme:      c.FormValue("theme"),
		CategoryID: c.FormValue("categoryId"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all; the text fields above still bound.
		return input, nil, nil
	}

	var uploads []service.Upload
	for _, header := range form.File["files"] {
		uploads = append(uploads, uploadFromHeader(header))
	}
	return input, uploads, nil
}

func uploadFromHeader(header *multipart.FileHeader) service.Upload {
	return service.Upload{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// parseIDParam reads the :id path parameter, failing with the given domain
// error on anything non-numeric.
func parseIDParam(c echo.Context, invalidErr error) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return uint(id), nil
}
