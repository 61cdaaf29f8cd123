package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsemenov/storefront/internal/auth"
)

type profileRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (s *Server) profileGet(c *gin.Context) {
	userID, ok := s.currentUser(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "Authentication Error")
		return
	}
	p, err := s.deps.Profiles.Get(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) profileUpdate(c *gin.Context) {
	userID, ok := s.currentUser(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "Authentication Error")
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	p, err := s.deps.Profiles.Update(c.Request.Context(), userID, req.FullName, req.Email, req.Phone)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) changePassword(c *gin.Context) {
	userID, ok := s.currentUser(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "Authentication Error")
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		incorrectData(c)
		return
	}
	err := s.deps.Auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			errorResponse(c, http.StatusBadRequest, "Incorrect current password")
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.Status(http.StatusOK)
}
