package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/filestore"
	productrepo "storefront-backend/internal/repository/product"
	"storefront-backend/internal/service/catalog"
)

type stockRequest struct {
	// Op is one of "set", "increase", "decrease".
	Op       string `json:"op"`
	Quantity int    `json:"quantity"`
}

func (a *api) withImageURL(p *domain.Product) *domain.Product {
	if p != nil && p.ImageRef != "" {
		p.ImageURL = filestore.URL(a.fileURLHost, p.ImageRef)
	}
	return p
}

func (a *api) withImageURLs(products []domain.Product) []domain.Product {
	for i := range products {
		a.withImageURL(&products[i])
	}
	return products
}

func (a *api) listProducts(c *gin.Context) {
	f := productrepo.Filter{
		CategoryID:    queryID(c, "categoryId"),
		SubcategoryID: queryID(c, "subcategoryId"),
		Active:        queryBool(c, "active"),
		Search:        strings.TrimSpace(c.Query("search")),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		f.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset > 0 {
		f.Offset = offset
	}

	products, err := a.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.withImageURLs(products))
}

func (a *api) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := a.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.withImageURL(p))
}

func (a *api) productStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	qty := 1
	if v, err := strconv.Atoi(c.DefaultQuery("quantity", "1")); err == nil {
		qty = v
	}
	available, err := a.catalog.HasStock(c.Request.Context(), id, qty)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"productId": id, "quantity": qty, "available": available})
}

// productInput reads either a JSON body or a multipart form with an optional
// image file. Multipart is what the admin UI sends; JSON keeps scripting easy.
func (a *api) productInput(c *gin.Context) (catalog.ProductInput, bool) {
	var in catalog.ProductInput

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadRequest(c, "invalid request body")
			return in, false
		}
		return in, true
	}

	in.Name = c.PostForm("name")
	in.Description = c.PostForm("description")

	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		respondBadRequest(c, "price must be a decimal number")
		return in, false
	}
	in.Price = price

	if raw := strings.TrimSpace(c.PostForm("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "stock must be an integer")
			return in, false
		}
		in.Stock = stock
	}
	if in.CategoryID, err = strconv.ParseInt(c.PostForm("categoryId"), 10, 64); err != nil {
		respondBadRequest(c, "categoryId must be an integer")
		return in, false
	}
	if in.SubcategoryID, err = strconv.ParseInt(c.PostForm("subcategoryId"), 10, 64); err != nil {
		respondBadRequest(c, "subcategoryId must be an integer")
		return in, false
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		ref, err := a.files.Save(fh)
		if err != nil {
			respondError(c, err)
			return in, false
		}
		in.ImageRef = ref
	}
	return in, true
}

func (a *api) createProduct(c *gin.Context) {
	in, ok := a.productInput(c)
	if !ok {
		return
	}
	p, err := a.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		// do not leave an orphan file behind on a rejected create
		if in.ImageRef != "" {
			a.files.Delete(in.ImageRef)
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, a.withImageURL(p))
}

func (a *api) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := a.productInput(c)
	if !ok {
		return
	}
	p, err := a.catalog.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		if in.ImageRef != "" {
			a.files.Delete(in.ImageRef)
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.withImageURL(p))
}

func (a *api) setProductStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "active flag is required")
		return
	}
	p, err := a.catalog.SetProductActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.withImageURL(p))
}

func (a *api) adjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	var (
		p   *domain.Product
		err error
	)
	switch req.Op {
	case "set":
		p, err = a.catalog.SetStock(c.Request.Context(), id, req.Quantity)
	case "increase":
		p, err = a.catalog.IncreaseStock(c.Request.Context(), id, req.Quantity)
	case "decrease":
		p, err = a.catalog.DecreaseStock(c.Request.Context(), id, req.Quantity)
	default:
		respondBadRequest(c, "op must be set, increase or decrease")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a.withImageURL(p))
}

func (a *api) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "product deleted")
}
