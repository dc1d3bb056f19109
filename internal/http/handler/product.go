package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"inventario/internal/service"
)

// ListProducts godoc
// @Summary List products
// @Tags productos
// @Produce json
// @Success 200 {array} model.Product
// @Failure 500 {object} errorPayload
// @Router /api/productos [get]
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetProduct godoc
// @Summary Get a product
// @Tags productos
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/productos/{id} [get]
func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// CreateProduct godoc
// @Summary Create a product
// @Description Accepts JSON or multipart/form-data. File parts imagen and video are optional.
// @Tags productos
// @Accept json,mpfd
// @Produce json
// @Param producto formData string true "Name"
// @Param cantidad formData int true "Quantity"
// @Param imagen formData file false "Image"
// @Param video formData file false "Video"
// @Success 201 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/productos [post]
func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseProductRequest(c)
		if err != nil {
			return writeRequestError(c, err)
		}
		defer req.Close()

		p, err := svc.Create(c.UserContext(), req.createInput())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Partial update. Omitted fields keep their stored value.
// @Tags productos
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Product ID"
// @Param producto formData string false "Name"
// @Param cantidad formData int false "Quantity"
// @Param imagen formData file false "Image"
// @Param video formData file false "Video"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/productos/{id} [put]
func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		req, err := parseProductRequest(c)
		if err != nil {
			return writeRequestError(c, err)
		}
		defer req.Close()

		p, err := svc.Update(c.UserContext(), id, req.updateInput())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags productos
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} errorPayload
// @Router /api/productos/{id} [delete]
func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

func writeRequestError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidBody) {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	return writeServiceError(c, err)
}
