package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (a *api) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	// Elevated roles are only granted when the caller is an authenticated admin.
	grantedBy := domain.RoleClient
	if u := currentUser(c); u != nil {
		grantedBy = u.Role
	}

	u, err := a.auth.Register(c.Request.Context(), req, grantedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, u)
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	session, err := a.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (a *api) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	session, err := a.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (a *api) me(c *gin.Context) {
	respond(c, http.StatusOK, currentUser(c))
}
