package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
	"shellnote/internal/service"
)

// CategoryHandler handles note category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents a create or rename request.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryListResponse wraps a category listing.
type CategoryListResponse struct {
	Categories []model.Category `json:"categories"`
}

// CategoryResponse reports a created category.
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// List godoc
// @Summary List the caller's categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CategoryListResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return c.JSON(http.StatusOK, CategoryListResponse{Categories: categories})
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category name"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "INVALID_REQUEST",
		})
	}

	category, err := h.categoryService.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, CategoryResponse{
		ID:   category.ID,
		Name: category.Name,
	})
}

// Rename godoc
// @Summary Rename a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category id"
// @Param request body CategoryRequest true "New name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Rename(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	categoryID, err := parseIDParam(c, apperrors.ErrInvalidCategoryID)
	if err != nil {
		return respondError(c, err)
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "INVALID_REQUEST",
		})
	}

	if err := h.categoryService.Rename(c.Request().Context(), userID, categoryID, req.Name); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "category renamed"})
}

// Delete godoc
// @Summary Delete a category; its notes become uncategorized
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	categoryID, err := parseIDParam(c, apperrors.ErrInvalidCategoryID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.categoryService.Delete(c.Request().Context(), userID, categoryID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "category deleted"})
}
