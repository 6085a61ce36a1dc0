package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const authCookie = "mirror_auth"

// authCookieMaxAge keeps operators logged in for a whole wedding day.
const authCookieMaxAge = 24 * 60 * 60

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if s.cfg.Server.AdminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.Server.AdminPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}
	c.SetCookie(authCookie, s.cfg.Server.AdminPassword, authCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged in"})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(authCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// requireAuth guards admin routes. With no admin password configured the
// admin surface stays open, which suits a kiosk on a private network.
func (s *Server) requireAuth(c *gin.Context) {
	if s.cfg.Server.AdminPassword == "" {
		c.Next()
		return
	}
	cookie, err := c.Cookie(authCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(cookie), []byte(s.cfg.Server.AdminPassword)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	c.Next()
}
