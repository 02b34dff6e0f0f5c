package app

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"

	"imprenta-studio/app/controller"
	"imprenta-studio/app/router"
	"imprenta-studio/db"
	"imprenta-studio/repository"
	"imprenta-studio/service"
)

// defaultTaxRateBps is Colombian IVA (19%) in basis points
const defaultTaxRateBps = 1900

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Redis product cache is optional; without REDIS_ADDR every catalog
	// read hits the database
	var rdb *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("✓ Redis product cache enabled at %s", redisAddr)
	} else {
		log.Printf("⚠️ REDIS_ADDR not set, product cache disabled")
	}

	// Get credentials path from environment variable
	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentialsPath == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
	}

	ordersFolderID := os.Getenv("DRIVE_ORDERS_FOLDER_ID")
	if ordersFolderID == "" {
		return fmt.Errorf("DRIVE_ORDERS_FOLDER_ID environment variable is not set")
	}

	// Initialize Drive service
	driveService, err := service.NewDriveService(credentialsPath, ordersFolderID)
	if err != nil {
		return err
	}

	paymentSecret := os.Getenv("PAYMENT_SIGNING_SECRET")
	if paymentSecret == "" {
		return fmt.Errorf("PAYMENT_SIGNING_SECRET environment variable is not set")
	}

	taxRateBps := int64(defaultTaxRateBps)
	if raw := os.Getenv("TAX_RATE_BPS"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TAX_RATE_BPS value %q: %w", raw, err)
		}
		taxRateBps = parsed
	}

	proofBaseURL := os.Getenv("PROOF_BASE_URL")
	if proofBaseURL == "" {
		proofBaseURL = "http://localhost:8080"
	}

	if err := service.EnsurePreviewCacheDir(); err != nil {
		return err
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository()
	orderRepo := repository.NewOrderRepository()
	uploadRepo := repository.NewDesignUploadRepository()

	// Initialize services
	productService := service.NewProductService(productRepo, rdb)
	gateway := service.NewSignedReferenceGateway(paymentSecret)
	checkoutService := service.NewCheckoutService(productService, orderRepo, uploadRepo, driveService, gateway, taxRateBps)
	proofService := service.NewProofService(orderRepo, uploadRepo, proofBaseURL)

	// Create controllers
	controllers := &router.Controllers{
		Product:    controller.NewProductController(productService),
		Order:      controller.NewOrderController(checkoutService, orderRepo, uploadRepo),
		DesignFile: controller.NewDesignFileController(checkoutService, uploadRepo, driveService),
		Proof:      controller.NewProofController(proofService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
