package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/cart"
)

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (a *api) decorateCart(c *domain.Cart) *domain.Cart {
	for i := range c.Items {
		if c.Items[i].Product != nil {
			a.withImageURL(c.Items[i].Product)
		}
	}
	return c
}

func (a *api) getCart(c *gin.Context) {
	u := currentUser(c)
	out, err := a.cart.Get(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.decorateCart(out))
}

func (a *api) addCartLine(c *gin.Context) {
	u := currentUser(c)
	var req cart.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	line, err := a.cart.AddLine(c.Request.Context(), u.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, line)
}

func (a *api) updateCartLine(c *gin.Context) {
	u := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	line, err := a.cart.UpdateQuantity(c.Request.Context(), u.ID, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, line)
}

func (a *api) removeCartLine(c *gin.Context) {
	u := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.cart.RemoveLine(c.Request.Context(), u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "item removed")
}

func (a *api) clearCart(c *gin.Context) {
	u := currentUser(c)
	removed, err := a.cart.Clear(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"removed": removed})
}
