package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	subcategoryrepo "storefront-backend/internal/repository/subcategory"
	"storefront-backend/internal/service/catalog"
)

func queryID(c *gin.Context, name string) *int64 {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func (a *api) listSubcategories(c *gin.Context) {
	f := subcategoryrepo.Filter{
		CategoryID: queryID(c, "categoryId"),
		Active:     queryBool(c, "active"),
	}
	subs, err := a.catalog.ListSubcategories(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subs)
}

func (a *api) getSubcategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sub, err := a.catalog.GetSubcategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sub)
}

func (a *api) createSubcategory(c *gin.Context) {
	var req catalog.SubcategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	sub, err := a.catalog.CreateSubcategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, sub)
}

func (a *api) updateSubcategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req catalog.SubcategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	sub, err := a.catalog.UpdateSubcategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sub)
}

func (a *api) setSubcategoryStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "active flag is required")
		return
	}
	sub, err := a.catalog.SetSubcategoryActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sub)
}

func (a *api) deleteSubcategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.catalog.DeleteSubcategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "subcategory deleted")
}
