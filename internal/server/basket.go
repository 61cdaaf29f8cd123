package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/identity"
)

type basketRequest struct {
	ID    int64 `json:"id" binding:"required"`
	Count int   `json:"count" binding:"required"`
}

func (s *Server) basketList(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		// Nothing to show: no account, no anonymous history.
		c.JSON(http.StatusOK, []basketItem{})
		return
	}
	lines, err := s.deps.Baskets.List(c.Request.Context(), owner)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, basketItems(lines, time.Now()))
}

func (s *Server) basketAdd(c *gin.Context) {
	owner, err := identity.ResolveOrCreate(sessions.Default(c))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req basketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	lines, err := s.deps.Baskets.Add(c.Request.Context(), owner, req.ID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, basket.ErrOutOfStock):
			errorResponse(c, http.StatusBadRequest, "Out of products")
		default:
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, basketItems(lines, time.Now()))
}

func (s *Server) basketRemove(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		incorrectData(c)
		return
	}
	var req basketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	lines, err := s.deps.Baskets.Remove(c.Request.Context(), owner, req.ID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound), errors.Is(err, basket.ErrNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, basketItems(lines, time.Now()))
}
