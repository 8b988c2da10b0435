package routes

import (
	"log"
	"os"

	"socialreply/automation"
	controller "socialreply/controllers"
	"socialreply/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// Log initialization
	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, engine *automation.Engine) {
	// Initialize controllers with their respective loggers
	flowController := controller.NewFlowController(db, log.New(os.Stdout, "FLOW: ", log.LstdFlags))
	processorController := controller.NewProcessorController(db, engine, log.New(os.Stdout, "PROCESSOR: ", log.LstdFlags))
	messageController := controller.NewMessageController(db, engine, log.New(os.Stdout, "MESSAGE: ", log.LstdFlags))
	accountController := controller.NewAccountController(db, log.New(os.Stdout, "ACCOUNT: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetStats)

	// Account routes
	account := api.Group("/accounts")
	account.Post("/", accountController.ConnectAccount)
	account.Get("/", accountController.GetAccounts)
	account.Delete("/:id", accountController.DisconnectAccount)

	// Flow routes
	flow := api.Group("/auto-reply/flows")
	flow.Post("/", flowController.CreateFlow)
	flow.Get("/", flowController.GetFlows)
	flow.Get("/:id", flowController.GetFlow)
	flow.Put("/:id", flowController.UpdateFlow)
	flow.Delete("/:id", flowController.DeleteFlow)
	flow.Patch("/:id/toggle", flowController.ToggleFlow)
	flow.Get("/:id/executions", flowController.GetFlowExecutions)
	flow.Get("/:id/stats", flowController.GetFlowStats)
	flow.Post("/:id/test", flowController.TestFlow)

	// Message routes
	message := api.Group("/messages")
	message.Post("/", messageController.IngestMessage)
	message.Get("/", messageController.GetMessages)
	message.Put("/:id/read", messageController.MarkMessageRead)

	// Processor routes with rate limiting on the manual dispatch endpoint
	processor := api.Group("/auto-reply")
	processor.Post("/process", processorController.ProcessMessage)
	processor.Post("/execute", middleware.ExecuteRateLimiter(), processorController.ExecutePending)

	// WebSocket route for execution progress
	app.Get("/api/v1/auto-reply/flows/progress", websocket.New(func(c *websocket.Conn) {
		controller.HandleExecutionProgressWS(c)
	}))

	// Log initialization
	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, engine *automation.Engine) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, engine)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
