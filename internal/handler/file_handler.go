package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/service"
)

// FileHandler serves attachment downloads.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Download godoc
// @Summary Download an attachment under its original filename
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "File id"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /files/{id} [get]
func (h *FileHandler) Download(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	fileID, err := parseIDParam(c, apperrors.ErrInvalidFileID)
	if err != nil {
		return respondError(c, err)
	}

	path, downloadName, err := h.fileService.Download(c.Request().Context(), userID, fileID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Attachment(path, downloadName)
}
