package http

import (
	"net/http"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/service"
	"github.com/fayiz2005/Kaze/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	checkout CheckoutUseCase
	catalog  CatalogUseCase
	orders   OrderUseCase
	auth     AuthUseCase
	log      *zap.Logger
}

func NewHandler(checkout CheckoutUseCase, catalog CatalogUseCase, orders OrderUseCase, auth AuthUseCase, log *zap.Logger) *Handler {
	return &Handler{
		checkout: checkout,
		catalog:  catalog,
		orders:   orders,
		auth:     auth,
		log:      log,
	}
}

func (h *Handler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Checkout", err)
		return
	}

	in := service.CheckoutInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Phone:         req.Phone,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Items:         make([]service.LineItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			h.badRequest(c, "Checkout", err)
			return
		}
		li := service.LineItem{ProductID: pid, Quantity: it.Quantity}
		if it.VariantID != nil && *it.VariantID != "" {
			vid, err := uuid.Parse(*it.VariantID)
			if err != nil {
				h.badRequest(c, "Checkout", err)
				return
			}
			li.VariantID = &vid
		}
		in.Items = append(in.Items, li)
	}

	order, err := h.checkout.Checkout(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "Checkout", err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromOrder(order))
}

func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, "ListCategories", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategories(list))
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "CreateCategory", err)
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, "CreateCategory", err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromCategory(cat))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.idParam(c, "DeleteCategory")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, "DeleteCategory", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListProducts(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "ListProducts", err)
		return
	}

	f := service.ProductFilter{Query: q.Query, Limit: q.Limit, Offset: q.Offset}
	if q.CategoryID != "" {
		cid, err := uuid.Parse(q.CategoryID)
		if err != nil {
			h.badRequest(c, "ListProducts", err)
			return
		}
		f.CategoryID = &cid
	}

	list, total, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		h.fail(c, "ListProducts", err)
		return
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{
		Items:  dto.FromProducts(list),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := h.idParam(c, "GetProduct")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProduct(p))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "CreateProduct", err)
		return
	}
	cents, ok := dto.PriceToCents(req.Price)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{
			{Field: "price", Message: "must be >= 0 with at most 2 decimal places"},
		}))
		return
	}
	cid, err := uuid.Parse(req.CategoryID)
	if err != nil {
		h.badRequest(c, "CreateProduct", err)
		return
	}

	in := service.ProductInput{
		CategoryID:  cid,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PriceCents:  cents,
		Stock:       req.Stock,
		Variants:    make([]service.VariantInput, 0, len(req.Variants)),
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, service.VariantInput{
			SizeType:  models.SizeType(v.SizeType),
			SizeValue: v.SizeValue,
			Stock:     v.Stock,
		})
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromProduct(p))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.idParam(c, "DeleteProduct")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, "DeleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetVariantStock(c *gin.Context) {
	var req dto.SetVariantStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "SetVariantStock", err)
		return
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.badRequest(c, "SetVariantStock", err)
		return
	}
	vid, err := uuid.Parse(req.VariantID)
	if err != nil {
		h.badRequest(c, "SetVariantStock", err)
		return
	}

	v, err := h.catalog.SetVariantStock(c.Request.Context(), pid, vid, *req.Stock)
	if err != nil {
		h.fail(c, "SetVariantStock", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromVariant(v))
}

func (h *Handler) SetProductStock(c *gin.Context) {
	id, ok := h.idParam(c, "SetProductStock")
	if !ok {
		return
	}
	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "SetProductStock", err)
		return
	}

	p, err := h.catalog.SetProductStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		h.fail(c, "SetProductStock", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProduct(p))
}

func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.orders.ListDashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(list))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.idParam(c, "GetOrder")
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(o))
}

func (h *Handler) ToggleFulfillment(c *gin.Context) {
	id, ok := h.idParam(c, "ToggleFulfillment")
	if !ok {
		return
	}
	o, err := h.orders.ToggleFulfillment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "ToggleFulfillment", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(o))
}

func (h *Handler) idParam(c *gin.Context, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warn("invalid id", zap.String("op", op), zap.String("id", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationError("invalid id", []dto.FieldError{
			{Field: "id", Message: "must be a valid uuid", Tag: "uuid"},
		}))
		return uuid.Nil, false
	}
	return id, true
}
