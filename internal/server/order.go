package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/payment"
)

type confirmRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	DeliveryType string `json:"deliveryType" binding:"required"`
	PaymentType  string `json:"paymentType" binding:"required"`
	City         string `json:"city" binding:"required"`
	Address      string `json:"address" binding:"required"`
}

func (s *Server) ordersList(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, []orderPayload{})
		return
	}
	details, err := s.deps.Orders.List(c.Request.Context(), owner)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	now := time.Now()
	payloads := make([]orderPayload, 0, len(details))
	for _, d := range details {
		payloads = append(payloads, newOrderPayload(d, now))
	}
	c.JSON(http.StatusOK, payloads)
}

func (s *Server) checkout(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		incorrectData(c)
		return
	}
	orderID, err := s.deps.Orders.Checkout(c.Request.Context(), owner, time.Now())
	if err != nil {
		if errors.Is(err, order.ErrEmptyBasket) {
			incorrectData(c)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID})
}

func (s *Server) orderDetail(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		incorrectData(c)
		return
	}
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		incorrectData(c)
		return
	}
	detail, err := s.deps.Orders.Fetch(c.Request.Context(), owner, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, newOrderPayload(*detail, time.Now()))
}

func (s *Server) orderConfirm(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		incorrectData(c)
		return
	}
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		incorrectData(c)
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	confirmation := order.Confirmation{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		DeliveryType: req.DeliveryType,
		PaymentType:  req.PaymentType,
		City:         req.City,
		Address:      req.Address,
	}
	err = s.deps.Orders.Confirm(c.Request.Context(), owner, orderID, confirmation, time.Now())
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID})
}

func (s *Server) pay(c *gin.Context) {
	owner, ok := s.currentIdentity(c)
	if !ok {
		incorrectData(c)
		return
	}
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		incorrectData(c)
		return
	}
	var card payment.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		incorrectData(c)
		return
	}
	err = s.deps.Payments.Pay(c.Request.Context(), owner, orderID, card, time.Now())
	if err != nil {
		var payErr payment.Error
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.As(err, &payErr):
			errorResponse(c, http.StatusBadRequest, payErr.Error())
		default:
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.Status(http.StatusOK)
}
