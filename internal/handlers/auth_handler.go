package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler is the login stub. It performs no real verification and keeps
// no session; it only validates the input shape and answers after a fixed
// delay.
type AuthHandler struct {
	LoginDelay time.Duration
}

func NewAuthHandler(loginDelay time.Duration) *AuthHandler {
	return &AuthHandler{LoginDelay: loginDelay}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Username and password are required",
		})
		return
	}

	if len(req.Username) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Username must be at least 3 characters long",
		})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Password must be at least 6 characters long",
		})
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Please enter a valid email address",
		})
		return
	}

	// Simulated network delay.
	time.Sleep(h.LoginDelay)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user": gin.H{
			"username":   req.Username,
			"email":      req.Email,
			"last_login": time.Now(),
		},
	})
}
