package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// register handles POST /register
func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// login handles POST /login with form or JSON credentials
func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid credentials request", err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// refreshToken handles POST /token/refresh
func (h *Handler) refreshToken(c *gin.Context) {
	token, _ := bearerToken(c)
	resp, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deleteUser handles DELETE /user/:id
func (h *Handler) deleteUser(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.accounts.DeleteUser(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}
