package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	serrors "github.com/mernshop/shop-backend/pkg/errors"
	"github.com/mernshop/shop-backend/pkg/utils"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"
)

// Register adds the user, product, order and payment routes to the given
// router group.
func Register(group gin.IRoutes, store *Store) {
	h := &handlers{store: store}

	group.POST("/register", h.registerUser)
	group.GET("/admin/users", h.listUsers)
	group.GET("/admin/user/:id", h.getUser)

	group.GET("/products", h.listProducts)
	group.GET("/product/:id", h.getProduct)
	group.POST("/admin/product/new", h.createProduct)
	group.PUT("/admin/product/:id", h.updateProduct)
	group.DELETE("/admin/product/:id", h.deleteProduct)

	group.POST("/order/new", h.createOrder)
	group.GET("/order/:id", h.getOrder)
	group.GET("/admin/orders", h.listOrders)

	group.POST("/payment/process", h.processPayment)
	group.GET("/payment/status/:id", h.getPayment)
}

const maxLoggedReasonLength = 200

type handlers struct {
	store *Store
}

// respond writes the result of a handler.
// Errors annotated with a status are answered with that status. Other
// errors are attached to the context and left to the error counting
// middleware.
func respond(c *gin.Context, status int, body gin.H, err error) {
	if err != nil {
		if errStatus := serrors.StatusOf(err); errStatus != 0 {
			klog.FromContext(c.Request.Context()).V(3).Info("Request rejected",
				"status", errStatus,
				"reason", utils.ShortenMessage(err.Error(), maxLoggedReasonLength),
			)
			c.JSON(errStatus, gin.H{"success": false, "message": err.Error()})
			return
		}
		_ = c.Error(err)
		return
	}
	body["success"] = true
	c.JSON(status, body)
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return serrors.BadRequest(errors.Wrap(err, "invalid request body"))
	}
	return nil
}

func (h *handlers) registerUser(c *gin.Context) {
	var body User
	if err := bindJSON(c, &body); err != nil {
		respond(c, 0, nil, err)
		return
	}
	user, err := h.store.CreateUser(User{Name: body.Name, Email: body.Email})
	respond(c, http.StatusCreated, gin.H{"user": user}, err)
}

func (h *handlers) listUsers(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"users": h.store.Users()}, nil)
}

func (h *handlers) getUser(c *gin.Context) {
	user, err := h.store.User(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"user": user}, err)
}

func (h *handlers) listProducts(c *gin.Context) {
	products := h.store.Products(c.Query("keyword"))
	respond(c, http.StatusOK, gin.H{"products": products, "productsCount": len(products)}, nil)
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.store.Product(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"product": product}, err)
}

func (h *handlers) createProduct(c *gin.Context) {
	var body Product
	if err := bindJSON(c, &body); err != nil {
		respond(c, 0, nil, err)
		return
	}
	product, err := h.store.CreateProduct(body)
	respond(c, http.StatusCreated, gin.H{"product": product}, err)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var body Product
	if err := bindJSON(c, &body); err != nil {
		respond(c, 0, nil, err)
		return
	}
	product, err := h.store.UpdateProduct(c.Param("id"), body)
	respond(c, http.StatusOK, gin.H{"product": product}, err)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	err := h.store.DeleteProduct(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"message": "Product deleted"}, err)
}

type newOrderRequest struct {
	UserID string      `json:"userId"`
	Items  []OrderItem `json:"items"`
}

func (h *handlers) createOrder(c *gin.Context) {
	var body newOrderRequest
	if err := bindJSON(c, &body); err != nil {
		respond(c, 0, nil, err)
		return
	}
	order, err := h.store.CreateOrder(body.UserID, body.Items)
	respond(c, http.StatusCreated, gin.H{"order": order}, err)
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.store.Order(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"order": order}, err)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders := h.store.Orders()
	var total float64
	for _, order := range orders {
		total += order.TotalPrice
	}
	respond(c, http.StatusOK, gin.H{"orders": orders, "totalAmount": total}, nil)
}

type paymentRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

func (h *handlers) processPayment(c *gin.Context) {
	var body paymentRequest
	if err := bindJSON(c, &body); err != nil {
		respond(c, 0, nil, err)
		return
	}
	payment, err := h.store.ProcessPayment(body.OrderID, body.Amount)
	respond(c, http.StatusOK, gin.H{"payment": payment}, err)
}

func (h *handlers) getPayment(c *gin.Context) {
	payment, err := h.store.Payment(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"payment": payment}, err)
}
