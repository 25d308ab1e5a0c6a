package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/service/order"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (a *api) checkout(c *gin.Context) {
	u := currentUser(c)
	var req order.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	o, err := a.orders.Checkout(c.Request.Context(), u.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (a *api) listMyOrders(c *gin.Context) {
	u := currentUser(c)
	orders, err := a.orders.ListMine(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (a *api) listAllOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	orders, err := a.orders.ListAll(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (a *api) getOrder(c *gin.Context) {
	u := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := a.orders.Get(c.Request.Context(), u.ID, u.Role, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (a *api) setOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	o, err := a.orders.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (a *api) cancelOrder(c *gin.Context) {
	u := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := a.orders.Cancel(c.Request.Context(), u.ID, u.Role, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (a *api) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "order deleted")
}
