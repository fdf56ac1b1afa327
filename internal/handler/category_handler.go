package handler

import (
	"net/http"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create/update category request body
type CategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Icon string `json:"icon"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Icon string `json:"icon"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), ownerID, toCategoryInput(req))
	if err != nil {
		return handleServiceError(c, err, "create category")
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), ownerID, c.Param("id"), toCategoryInput(req))
	if err != nil {
		return handleServiceError(c, err, "update category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return handleServiceError(c, err, "delete category")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "get category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// GetCategories handles GET /api/v1/categories with an optional kind filter
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	kind, err := parseKindParam(c)
	if err != nil {
		return handleServiceError(c, err, "parse kind")
	}

	categories, err := h.categoryService.ListCategories(c.Request().Context(), ownerID, kind)
	if err != nil {
		return handleServiceError(c, err, "list categories")
	}

	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// CreateDefaults handles POST /api/v1/categories/defaults
func (h *CategoryHandler) CreateDefaults(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	created, err := h.categoryService.CreateDefaultCategories(c.Request().Context(), ownerID)
	if err != nil {
		return handleServiceError(c, err, "create default categories")
	}

	return c.JSON(http.StatusCreated, toCategoryResponses(created))
}

// GetIcons handles GET /api/v1/categories/icons
func (h *CategoryHandler) GetIcons(c echo.Context) error {
	return c.JSON(http.StatusOK, h.categoryService.Icons())
}

// toCategoryInput keeps an unrecognized kind as given so validation reports it
func toCategoryInput(req CategoryRequest) service.CategoryInput {
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		kind = domain.Kind(req.Kind)
	}
	return service.CategoryInput{Name: req.Name, Kind: kind, Icon: req.Icon}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
		Kind: string(c.Kind),
		Icon: c.Icon,
	}
}

func toCategoryResponses(categories []domain.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = toCategoryResponse(&categories[i])
	}
	return responses
}
