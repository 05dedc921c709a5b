package public

import (
	"net/http"
	"strconv"
	"strings"

	handlershared "github.com/desi-etsy/internal/http/handlers/shared"
	"github.com/desi-etsy/internal/http/response"
	"github.com/desi-etsy/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListPublic(c.Request.Context(), service.PublicListInput{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.SuccessWithPage(c, products, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetPublicByID(c.Param("id"))
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.ProductService.Categories(c.Request.Context())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories)
}
