package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/controllers"
	"github.com/msorokina/school-canteen-api/middleware"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/msorokina/school-canteen-api/services"
	"github.com/msorokina/school-canteen-api/utils"
)

func main() {
	log.Println("Starting School Canteen API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Image storage: S3 when a bucket is configured, local filesystem
	// otherwise
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Image storage: S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		services.InitLocalImageService(utils.UploadDir)
		log.Printf("Image storage: local directory %s", utils.UploadDir)
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with sessions, CORS and all routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.Default())

	// Cookie-backed session store holds the per-user cart
	router.Use(sessions.Sessions("canteen_session", newSessionStore(cfg)))

	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/menu", controllers.Menu)
		v1.GET("/categories", controllers.ListCategories)
		v1.GET("/uploads/*filepath", controllers.GetUploadedImage)

		// Everything else requires a valid token
		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg))
		{
			authed.POST("/users", controllers.CreateUser)
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)
			authed.POST("/users/me/avatar", controllers.UploadAvatar)

			authed.GET("/cart", controllers.ViewCart)
			authed.POST("/cart/items/:dishID", controllers.AddToCart)
			authed.PUT("/cart/items/:dishID", controllers.UpdateCartItem)
			authed.DELETE("/cart/items/:dishID", controllers.RemoveFromCart)

			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders", controllers.MyOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.POST("/orders/:id/cancel", controllers.CancelOrder)
			authed.PUT("/orders/:id/status", controllers.UpdateOrderStatus)

			authed.GET("/kitchen/orders", controllers.KitchenOrders)

			admin := authed.Group("/admin")
			{
				admin.GET("/dashboard", controllers.AdminDashboard)
				admin.GET("/dishes", controllers.ListAllDishes)
				admin.POST("/dishes", controllers.CreateDish)
				admin.PUT("/dishes/:id", controllers.UpdateDish)
				admin.DELETE("/dishes/:id", controllers.DeleteDish)
				admin.POST("/dishes/:id/image", controllers.UploadDishImage)
				admin.GET("/categories", controllers.ListCategories)
				admin.POST("/categories", controllers.CreateCategory)
				admin.DELETE("/categories/:id", controllers.DeleteCategory)
				admin.GET("/orders", controllers.ListAllOrders)
				admin.GET("/users", controllers.ListUsers)
				admin.PUT("/users/:id/role", controllers.ChangeUserRole)
			}
		}
	}

	return router
}

// newSessionStore builds the cookie store backing the per-user cart.
// Secure is set only in production: clients refuse Secure cookies over
// plain HTTP, which would lose the cart on every request.
func newSessionStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "School Canteen API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
