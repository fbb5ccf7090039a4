// internal/router/router.go
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/config"
	"github.com/riteshop/riteshop-backend/internal/handlers"
	"github.com/riteshop/riteshop-backend/internal/middleware"
	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// Initialize wires services, handlers and middleware into the gin engine.
// The payment gateways are injected so tests can substitute stubs.
func Initialize(db *gorm.DB, cfg *config.Config, paypal services.PaymentGateway, cards services.CardGateway) (*gin.Engine, error) {
	// Services
	authorizationService := services.NewAuthorizationService()
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	userService := services.NewUserService(db, cfg)
	productService := services.NewProductService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, cartService, paypal, cards)
	roleRequestService := services.NewRoleRequestService(db)

	// Handlers
	userHandler := handlers.NewUserHandler(userService, authorizationService)
	authHandler := handlers.NewAuthHandler(userService, cfg)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, authorizationService)
	roleRequestHandler := handlers.NewRoleRequestHandler(roleRequestService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.Static("/uploads", "./uploads")

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", middleware.AuthRateLimit(), userHandler.Register)
			users.POST("/login", middleware.AuthRateLimit(), userHandler.Login)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired(userService))
			{
				protected.POST("/logout", userHandler.Logout)
				protected.GET("", userHandler.GetCurrentUser)
				protected.GET("/:id", userHandler.GetUser)
				protected.PUT("/:id", userHandler.UpdateUser)
				protected.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
		}

		products := api.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)

			admin := products.Group("")
			admin.Use(middleware.AuthRequired(userService), middleware.AdminRequired())
			{
				admin.POST("", productHandler.CreateProduct)
				admin.PUT("/:id", productHandler.UpdateProduct)
				admin.DELETE("/:id", productHandler.DeleteProduct)
				admin.POST("/:id/image", middleware.UploadRateLimit(), productHandler.UploadProductImage)
			}
		}

		cart := api.Group("/cart")
		cart.Use(middleware.AuthRequired(userService))
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("", cartHandler.AddItem)
			cart.PUT("", cartHandler.UpdateItem)
			cart.DELETE("", cartHandler.RemoveItem)
			cart.DELETE("/empty", cartHandler.EmptyCart)
		}

		orders := api.Group("/orders")
		orders.Use(middleware.AuthRequired(userService))
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/all", middleware.AdminRequired(), orderHandler.GetAllOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/user/:userId", orderHandler.GetOrdersByUser)
			orders.PUT("/:id", orderHandler.UpdateOrder)
			orders.POST("/create-paypal-transaction", orderHandler.CreatePayPalTransaction)
			orders.POST("/capture-payment/:orderId", orderHandler.CapturePayment)
			orders.POST("/:id/pay-intent", orderHandler.CreateCardIntent)
			orders.POST("/:id/confirm-card", orderHandler.ConfirmCardPayment)
		}

		roleRequests := api.Group("/request-role")
		roleRequests.Use(middleware.AuthRequired(userService))
		{
			roleRequests.POST("", roleRequestHandler.CreateRequest)
			roleRequests.GET("/requests", roleRequestHandler.GetOwnRequests)

			admin := roleRequests.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("", roleRequestHandler.GetAllRequests)
				admin.GET("/:id", roleRequestHandler.GetRequest)
				admin.GET("/requests/:requester", roleRequestHandler.GetRequestsByRequester)
				admin.PUT("/:id", roleRequestHandler.ReviewRequest)
			}
		}
	}

	return r, nil
}
