package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/identity"
)

func (s *Server) signUp(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		incorrectData(c)
		return
	}
	creds, ok := auth.ParseCredentials(body)
	if !ok {
		incorrectData(c)
		return
	}
	user, err := s.deps.Auth.Register(c.Request.Context(), creds)
	if err != nil {
		incorrectData(c)
		return
	}
	s.mergeAndLogin(c, user.ID)
	c.Status(http.StatusOK)
}

func (s *Server) signIn(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		incorrectData(c)
		return
	}
	creds, ok := auth.ParseCredentials(body)
	if !ok {
		incorrectData(c)
		return
	}
	user, err := s.deps.Auth.Login(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			incorrectData(c)
		}
		return
	}
	s.mergeAndLogin(c, user.ID)
	c.Status(http.StatusOK)
}

// mergeAndLogin folds the session's anonymous history into the account and
// binds the session to the user. Merge failures are logged, not surfaced:
// the login itself must not roll back.
func (s *Server) mergeAndLogin(c *gin.Context, userID int64) {
	sess := sessions.Default(c)
	if token, ok := identity.SessionToken(sess); ok {
		if err := s.deps.Auth.MergeIdentities(c.Request.Context(), token, userID); err != nil {
			log.Printf("identity merge failed for user %d: %v", userID, err)
		}
	}
	sess.Set(identity.UserKey, userID)
	if err := sess.Save(); err != nil {
		log.Printf("failed to save session for user %d: %v", userID, err)
	}
}

func (s *Server) signOut(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Printf("failed to clear session: %v", err)
	}
	c.Status(http.StatusOK)
}
