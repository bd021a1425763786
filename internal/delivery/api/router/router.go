// Package router registers the REST API routes.
package router

import (
	"fireworks/internal/delivery/api/middleware"
	"fireworks/internal/delivery/api/router/handler"
	"fireworks/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds the handlers and middleware registered on the server.
type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	CatalogHandler    *handler.CatalogHandler
	DiscountHandler   *handler.DiscountHandler
	CartHandler       *handler.CartHandler
	OrderHandler      *handler.OrderHandler
	UserHandler       *handler.UserHandler
	NewsletterHandler *handler.NewsletterHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	auth       *handler.AuthHandler
	catalog    *handler.CatalogHandler
	discount   *handler.DiscountHandler
	cart       *handler.CartHandler
	order      *handler.OrderHandler
	user       *handler.UserHandler
	newsletter *handler.NewsletterHandler
	authMW     *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		auth:       params.AuthHandler,
		catalog:    params.CatalogHandler,
		discount:   params.DiscountHandler,
		cart:       params.CartHandler,
		order:      params.OrderHandler,
		user:       params.UserHandler,
		newsletter: params.NewsletterHandler,
		authMW:     params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	r.registerPublic(apiV1)
	r.registerCustomer(apiV1.Group("", r.authMW.Authenticate))
	r.registerAdmin(apiV1.Group("/admin", r.authMW.Authenticate, r.authMW.RequireRole(entity.RoleAdmin)))
}

func (r *router) registerPublic(g *echo.Group) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/telegram", r.auth.LoginTelegram)
		authGroup.POST("/refresh", r.auth.Refresh)
		authGroup.POST("/logout", r.auth.Logout)
	}

	g.GET("/categories", r.catalog.ListCategories)
	g.GET("/categories/:id", r.catalog.GetCategory)
	g.GET("/products", r.catalog.ListProducts)
	g.GET("/products/search", r.catalog.SearchProducts)
	g.GET("/products/:id", r.catalog.GetProduct)
	g.GET("/products/:id/qr", r.catalog.ProductQRCode)
	g.GET("/tags", r.catalog.ListTags)
	g.GET("/discounts", r.discount.ListRunning)
	g.GET("/images/*", r.catalog.GetImage)
}

func (r *router) registerCustomer(g *echo.Group) {
	cartGroup := g.Group("/cart")
	{
		cartGroup.GET("", r.cart.GetCart)
		cartGroup.DELETE("", r.cart.ClearCart)
		cartGroup.POST("/items", r.cart.AddCartItem)
		cartGroup.PATCH("/items/:productId", r.cart.SetCartItemAmount)
		cartGroup.DELETE("/items/:productId", r.cart.RemoveCartItem)
	}

	favoritesGroup := g.Group("/favorites")
	{
		favoritesGroup.GET("", r.cart.ListFavorites)
		favoritesGroup.POST("", r.cart.AddFavorite)
		favoritesGroup.DELETE("/:productId", r.cart.RemoveFavorite)
	}

	addressesGroup := g.Group("/addresses")
	{
		addressesGroup.GET("", r.cart.ListAddresses)
		addressesGroup.POST("", r.cart.CreateAddress)
		addressesGroup.GET("/:id", r.cart.GetAddress)
		addressesGroup.PUT("/:id", r.cart.UpdateAddress)
		addressesGroup.DELETE("/:id", r.cart.DeleteAddress)
	}

	ordersGroup := g.Group("/orders")
	{
		ordersGroup.GET("", r.order.ListOrders)
		ordersGroup.POST("", r.order.CreateOrder)
		ordersGroup.GET("/statuses", r.order.ListStatuses)
		ordersGroup.GET("/:id", r.order.GetOrder)
		ordersGroup.PUT("/:id/address", r.order.UpdateAddress)
		ordersGroup.PUT("/:id/status", r.order.UpdateStatus)
		ordersGroup.POST("/:id/repeat", r.order.RepeatOrder)
	}

	usersGroup := g.Group("/users")
	{
		usersGroup.GET("/me", r.user.GetProfile)
		usersGroup.PATCH("/me", r.user.UpdateProfile)
	}
}

func (r *router) registerAdmin(g *echo.Group) {
	categoriesGroup := g.Group("/categories")
	{
		categoriesGroup.POST("", r.catalog.CreateCategory)
		categoriesGroup.PUT("/:id", r.catalog.UpdateCategory)
		categoriesGroup.DELETE("/:id", r.catalog.DeleteCategory)
	}

	productsGroup := g.Group("/products")
	{
		productsGroup.GET("", r.catalog.ListAllProducts)
		productsGroup.POST("", r.catalog.CreateProduct)
		productsGroup.GET("/:id", r.catalog.GetAnyProduct)
		productsGroup.PUT("/:id", r.catalog.UpdateProduct)
		productsGroup.DELETE("/:id", r.catalog.DeleteProduct)
		productsGroup.PUT("/:id/tags", r.catalog.SetProductTags)
		productsGroup.POST("/:id/image", r.catalog.UploadProductImage)
	}

	tagsGroup := g.Group("/tags")
	{
		tagsGroup.POST("", r.catalog.CreateTag)
		tagsGroup.DELETE("/:id", r.catalog.DeleteTag)
	}

	discountsGroup := g.Group("/discounts")
	{
		discountsGroup.GET("", r.discount.ListAll)
		discountsGroup.POST("", r.discount.Create)
		discountsGroup.GET("/:id", r.discount.Get)
		discountsGroup.PUT("/:id", r.discount.Update)
		discountsGroup.DELETE("/:id", r.discount.Delete)
		discountsGroup.POST("/:id/image", r.discount.UploadImage)
	}

	ordersGroup := g.Group("/orders")
	{
		ordersGroup.GET("", r.order.ListAllOrders)
		ordersGroup.GET("/:id", r.order.GetAnyOrder)
		ordersGroup.PUT("/:id/status", r.order.UpdateAnyStatus)
		ordersGroup.POST("/:id/items", r.order.AddItem)
		ordersGroup.PATCH("/:id/items/:itemId", r.order.UpdateItemAmount)
		ordersGroup.DELETE("/:id/items/:itemId", r.order.RemoveItem)
	}

	usersGroup := g.Group("/users")
	{
		usersGroup.GET("", r.user.ListUsers)
		usersGroup.PUT("/:id/verification", r.user.SetVerification)
	}

	newslettersGroup := g.Group("/newsletters")
	{
		newslettersGroup.GET("", r.newsletter.List)
		newslettersGroup.POST("", r.newsletter.Create)
		newslettersGroup.GET("/:id", r.newsletter.Get)
		newslettersGroup.PUT("/:id", r.newsletter.Update)
		newslettersGroup.POST("/:id/cancel", r.newsletter.Cancel)
		newslettersGroup.POST("/:id/image", r.newsletter.UploadImage)
		newslettersGroup.GET("/:id/preview", r.newsletter.Preview)
	}
}
