package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/app"
	"storefront/infra/grpc"
	"storefront/infra/identity"
	"storefront/infra/postgres"
	"storefront/infra/rabbitmq"
	"storefront/internal/middleware"
	"storefront/pkg/aws"
	"storefront/pkg/config"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"storefront/pkg/slug"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		// Multipart handlers pull the fiber context back out to read files.
		ctx := context.WithValue(c.UserContext(), "fiber", c)

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("app starting...")
	zap.L().Info("app config", zap.Any("appConfig", appConfig))

	fiberApp := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
	})

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
		appConfig.PostgresSSLMode,
	)
	defer pgRepository.Close()

	identityClient := identity.NewClient(
		appConfig.IdentityURL,
		appConfig.IdentityAnonKey,
		appConfig.IdentityService,
	)

	categoriesBucket := aws.NewBucket(appConfig.CategoriesBucket)
	productsBucket := aws.NewBucket(appConfig.ProductsBucket)

	slugResolver := slug.NewResolver(pgRepository)
	imageLifecycle := app.NewImageLifecycle(pgRepository, categoriesBucket, productsBucket)

	var eventPublisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewRabbitMQPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Warn("Failed to connect to RabbitMQ, events disabled", zap.Error(err))
		} else {
			eventPublisher = publisher
			defer publisher.Close()
		}
	}

	getCategories := app.NewGetCategoriesHandler(pgRepository)
	getCategory := app.NewGetCategoryHandler(pgRepository)
	createCategory := app.NewCreateCategoryHandler(pgRepository, slugResolver, eventPublisher)
	updateCategory := app.NewUpdateCategoryHandler(pgRepository, slugResolver, eventPublisher)
	toggleCategory := app.NewToggleCategoryHandler(pgRepository, eventPublisher)
	deleteCategory := app.NewDeleteCategoryHandler(pgRepository, imageLifecycle, eventPublisher)
	reorderCategories := app.NewReorderCategoriesHandler(pgRepository, eventPublisher)
	replaceCategoryImage := app.NewReplaceCategoryImageHandler(pgRepository, imageLifecycle)

	getProducts := app.NewGetProductsHandler(pgRepository)
	getProduct := app.NewGetProductHandler(pgRepository)
	createProduct := app.NewCreateProductHandler(pgRepository, slugResolver, eventPublisher)
	updateProduct := app.NewUpdateProductHandler(pgRepository, slugResolver, eventPublisher)
	toggleProduct := app.NewToggleProductHandler(pgRepository, eventPublisher)
	deleteProduct := app.NewDeleteProductHandler(pgRepository, imageLifecycle, eventPublisher)

	getProductImages := app.NewGetProductImagesHandler(pgRepository)
	uploadProductImages := app.NewUploadProductImagesHandler(pgRepository, imageLifecycle, eventPublisher)
	setPrimaryImage := app.NewSetPrimaryImageHandler(pgRepository, eventPublisher)
	deleteProductImage := app.NewDeleteProductImageHandler(pgRepository, imageLifecycle, eventPublisher)

	signIn := app.NewSignInHandler(pgRepository, identityClient)
	signOut := app.NewSignOutHandler(identityClient)
	createAdmin := app.NewCreateAdminHandler(pgRepository, identityClient, eventPublisher)
	listAdmins := app.NewListAdminsHandler(pgRepository)
	setAdminActive := app.NewSetAdminActiveHandler(pgRepository, eventPublisher)
	deleteAdmin := app.NewDeleteAdminHandler(pgRepository)

	accessGuard := middleware.NewAccessGuard(identityClient, pgRepository)

	publicRoutes := fiberApp.Group("/api/v1")
	publicRoutes.Get("/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategories))
	publicRoutes.Get("/categories/:id", handle[app.GetCategoryRequest, app.GetCategoryResponse](getCategory))
	publicRoutes.Get("/products", handle[app.GetProductsRequest, app.GetProductsResponse](getProducts))
	publicRoutes.Get("/products/:id", handle[app.GetProductRequest, app.GetProductResponse](getProduct))
	publicRoutes.Get("/products/:id/images", handle[app.GetProductImagesRequest, app.GetProductImagesResponse](getProductImages))
	publicRoutes.Post("/auth/sign-in", handle[app.SignInRequest, app.SignInResponse](signIn))

	adminRoutes := fiberApp.Group("/api/v1/admin", accessGuard)
	adminRoutes.Post("/auth/sign-out", handle[app.SignOutRequest, app.SignOutResponse](signOut))

	// Same listing handlers as the public surface; the guard context unlocks
	// the includeInactive view.
	adminRoutes.Get("/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategories))
	adminRoutes.Get("/products", handle[app.GetProductsRequest, app.GetProductsResponse](getProducts))

	adminRoutes.Post("/categories", handle[app.CreateCategoryRequest, app.CreateCategoryResponse](createCategory))
	adminRoutes.Put("/categories/reorder", handle[app.ReorderCategoriesRequest, app.ReorderCategoriesResponse](reorderCategories))
	adminRoutes.Put("/categories/:id", handle[app.UpdateCategoryRequest, app.UpdateCategoryResponse](updateCategory))
	adminRoutes.Patch("/categories/:id/toggle", handle[app.ToggleCategoryRequest, app.ToggleCategoryResponse](toggleCategory))
	adminRoutes.Put("/categories/:id/image", handle[app.ReplaceCategoryImageRequest, app.ReplaceCategoryImageResponse](replaceCategoryImage))
	adminRoutes.Delete("/categories/:id", handle[app.DeleteCategoryRequest, app.DeleteCategoryResponse](deleteCategory))

	adminRoutes.Post("/products", handle[app.CreateProductRequest, app.CreateProductResponse](createProduct))
	adminRoutes.Put("/products/:id", handle[app.UpdateProductRequest, app.UpdateProductResponse](updateProduct))
	adminRoutes.Patch("/products/:id/toggle", handle[app.ToggleProductRequest, app.ToggleProductResponse](toggleProduct))
	adminRoutes.Delete("/products/:id", handle[app.DeleteProductRequest, app.DeleteProductResponse](deleteProduct))

	adminRoutes.Post("/products/:id/images", handle[app.UploadProductImagesRequest, app.UploadProductImagesResponse](uploadProductImages))
	adminRoutes.Patch("/products/:id/images/:imageId/primary", handle[app.SetPrimaryImageRequest, app.SetPrimaryImageResponse](setPrimaryImage))
	adminRoutes.Delete("/products/:id/images/:imageId", handle[app.DeleteProductImageRequest, app.DeleteProductImageResponse](deleteProductImage))

	superAdminRoutes := fiberApp.Group("/api/v1/admin/admins", accessGuard, middleware.RequireSuperAdmin())
	superAdminRoutes.Get("/", handle[app.ListAdminsRequest, app.ListAdminsResponse](listAdmins))
	superAdminRoutes.Post("/", handle[app.CreateAdminRequest, app.CreateAdminResponse](createAdmin))
	superAdminRoutes.Patch("/:id/active", handle[app.SetAdminActiveRequest, app.SetAdminActiveResponse](setAdminActive))
	superAdminRoutes.Delete("/:id", handle[app.DeleteAdminRequest, app.DeleteAdminResponse](deleteAdmin))

	grpcServer, err := grpc.NewServer(appConfig)
	if err != nil {
		zap.L().Error("Failed to create gRPC server", zap.Error(err))
	} else {
		go func() {
			if err := grpcServer.Start(); err != nil {
				zap.L().Error("gRPC server stopped", zap.Error(err))
			}
		}()
	}

	// Start server in a goroutine
	go func() {
		if err := fiberApp.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(fiberApp, grpcServer)
}

func gracefulShutdown(fiberApp *fiber.App, grpcServer *grpc.Server) {
	// Create channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	zap.L().Info("Shutting down server...")

	if grpcServer != nil {
		if err := grpcServer.GracefulStop(); err != nil {
			zap.L().Error("Error during gRPC shutdown", zap.Error(err))
		}
	}

	// Shutdown with 5 second timeout
	if err := fiberApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == fiber.StatusNoContent {
			return c.SendStatus(fiber.StatusNoContent)
		}

		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
