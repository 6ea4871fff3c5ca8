package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"replacement-request-service/internal/config"
	"replacement-request-service/internal/controller"
	"replacement-request-service/internal/middleware"
	"replacement-request-service/internal/model"
	"replacement-request-service/internal/rabbit"
	"replacement-request-service/internal/repository"
	"replacement-request-service/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("connecting to MongoDB failed", zap.Error(err))
	}
	db := client.Database(cfg.MongoDBName)

	// Repository and services
	repo := repository.NewMongoOrderRepository(db)
	orderService := service.NewOrderService(repo, cfg.ReasonRequiredStatuses, logger)
	authService := service.NewAuthService(cfg.AuthURL, cfg.HTTPTimeout)

	// Handlers
	ctrl := controller.NewOrderController(orderService)

	// Router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Public routes
	r.POST("/orders/init", ctrl.InitOrder)
	r.GET("/meta/replacement", ctrl.GetReplacementMeta)

	// Token-protected routes
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.GET("/orders/:orderId", ctrl.GetOrder)
	auth.GET("/orders/mine", ctrl.GetMyOrders)
	auth.POST("/orders/:orderId/replacement", ctrl.OpenReplacement)
	auth.POST("/orders/:orderId/replacement/transition", ctrl.SubmitTransition)
	auth.PATCH("/orders/:orderId/status", ctrl.UpdateFulfillment)

	// Staff routes: subadmin may look, only seller/admin may touch, and
	// the service re-checks the role on every mutation anyway.
	staff := auth.Group("/staff")
	staff.Use(middleware.RequireRole(model.RoleSeller, model.RoleSubadmin, model.RoleAdmin))
	staff.GET("/orders", ctrl.GetAllOrders)
	staff.GET("/orders/replacements/:status", ctrl.GetOrdersByReplacementStatus)

	// RabbitMQ connection
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("connecting to RabbitMQ failed", zap.Error(err))
	}
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("opening RabbitMQ channel failed", zap.Error(err))
	}

	rabbit.SetupConsumers(ch, orderService, logger)

	// Run the server
	logger.Info("replacement request service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
