package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/authclient"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CategoryHandler *CategoryHTTP
	CartHandler     *CartHTTP
	CouponHandler   *CouponHTTP
	OrderHandler    *OrderHTTP
	PaymentHandler  *PaymentHTTP
	ShippingHandler *ShippingHTTP
	ReviewHandler   *ReviewHTTP

	JWTSecret  []byte
	AuthClient *authclient.Client

	// Ready reports whether storage is reachable. Nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	api := e.Group("/api/v1")

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.GET("/:id/reviews", d.ReviewHandler.ListReviews)
	products.POST("/:id/reviews", d.ReviewHandler.CreateReview, authMW.RequireAuth)
	products.DELETE("/:id/reviews/:review_id", d.ReviewHandler.DeleteReview, authMW.RequireAuth)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.ListCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)

	cart := api.Group("/cart", authMW.RequireShopper)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PUT("/items/:product_id", d.CartHandler.SetQuantity)
	cart.DELETE("/items/:product_id", d.CartHandler.RemoveItem)
	cart.POST("/coupon", d.CartHandler.ApplyCoupon)
	cart.DELETE("/coupon", d.CartHandler.RemoveCoupon)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	payments := api.Group("/payments")
	payments.POST("/checkout/:order_id", d.PaymentHandler.BeginPayment, authMW.RequireAuth)
	payments.POST("/webhook", d.PaymentHandler.Webhook)

	api.POST("/shipping/calculate", d.ShippingHandler.Calculate, authMW.RequireShopper)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PUT("/categories/:id", d.CategoryHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)
	admin.GET("/coupons", d.CouponHandler.ListCoupons)
	admin.POST("/coupons", d.CouponHandler.CreateCoupon)
	admin.PATCH("/coupons/:id", d.CouponHandler.PatchCoupon)
	admin.DELETE("/coupons/:id", d.CouponHandler.DeleteCoupon)
	admin.GET("/orders", d.OrderHandler.ListAllOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
