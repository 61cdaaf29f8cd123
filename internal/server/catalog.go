package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/models"
)

func (s *Server) productDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		incorrectData(c)
		return
	}
	detail, err := s.deps.Catalog.Product(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, newProductPayload(*detail, time.Now()))
}

// catalogFilter translates the frontend's query-string filter parameters.
func catalogFilter(c *gin.Context) catalog.Filter {
	f := catalog.Filter{
		Name:         c.Query("filter[name]"),
		FreeDelivery: c.Query("filter[freeDelivery]") == "true",
		Available:    c.Query("filter[available]") == "true",
	}
	minPrice, minErr := decimal.NewFromString(c.Query("filter[minPrice]"))
	maxPrice, maxErr := decimal.NewFromString(c.Query("filter[maxPrice]"))
	if minErr == nil && maxErr == nil && maxPrice.GreaterThanOrEqual(minPrice) {
		f.MinPrice = &minPrice
		f.MaxPrice = &maxPrice
	}
	for _, raw := range c.QueryArray("tags[]") {
		if tag, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.Tags = append(f.Tags, tag)
		}
	}
	f.Sort = c.DefaultQuery("sort", catalog.SortDate)
	f.Desc = c.DefaultQuery("sortType", "dec") == "dec"
	return f
}

func (s *Server) catalogList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("currentPage", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := s.deps.Catalog.Catalog(c.Request.Context(), catalogFilter(c), page, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       productPayloads(result.Items, time.Now()),
		"currentPage": result.CurrentPage,
		"lastPage":    result.LastPage,
	})
}

func (s *Server) productsPopular(c *gin.Context) {
	details, err := s.deps.Catalog.Popular(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, productPayloads(details, time.Now()))
}

func (s *Server) productsLimited(c *gin.Context) {
	details, err := s.deps.Catalog.Limited(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, productPayloads(details, time.Now()))
}

func (s *Server) sales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("currentPage", "1"))
	now := time.Now()

	result, err := s.deps.Catalog.Sales(c.Request.Context(), now, page, 10)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]salePayload, 0, len(result.Items))
	for _, d := range result.Items {
		items = append(items, newSalePayload(d, now))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"currentPage": result.CurrentPage,
		"lastPage":    result.LastPage,
	})
}

func (s *Server) tags(c *gin.Context) {
	tags, err := s.deps.Catalog.Tags(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, tags)
}

type reviewRequest struct {
	Author string `json:"author"`
	Email  string `json:"email"`
	Text   string `json:"text"`
	Rate   int    `json:"rate" binding:"required,min=1,max=5"`
}

func (s *Server) addReview(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		incorrectData(c)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	review := models.Review{
		Author: req.Author,
		Email:  req.Email,
		Text:   req.Text,
		Rate:   req.Rate,
	}
	if userID, ok := s.currentUser(c); ok {
		review.AuthorID = &userID
	}
	reviews, err := s.deps.Catalog.AddReview(c.Request.Context(), productID, review)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, reviews)
}
