package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/handler"
	"hypermarket-pos/internal/middleware"
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"
	"hypermarket-pos/internal/scanner"
	"hypermarket-pos/internal/service"
	"hypermarket-pos/internal/ws"
	"hypermarket-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// scanMessage is the frame scanner stations push over the websocket.
type scanMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Category{}, &model.Branch{}, &model.Product{},
		&model.Receipt{}, &model.ReceiptItem{}, &model.Sale{}, &model.StockMovement{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	branchRepo := repository.NewBranchRepo(db)
	receiptRepo := repository.NewReceiptRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// Catalog cache is the registers' read path; loaded once on boot and kept
	// in sync by the services that mutate stock.
	cache := catalog.NewCache(productRepo, categoryRepo, nil)
	if err := cache.Refresh(); err != nil {
		log.Fatalf("Failed to load product catalog: %v", err)
	}

	invService := service.NewInventoryService(productRepo, movementRepo, db, cache, wsHub)
	checkoutService := service.NewCheckoutService(db, productRepo, receiptRepo, saleRepo, movementRepo, cache, wsHub)
	dashService := service.NewDashboardService(movementRepo, saleRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, branchRepo)

	invHandler := handler.NewInventoryHandler(invService)
	catalogHandler := handler.NewCatalogHandler(cache, categoryRepo, branchRepo)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	receiptHandler := handler.NewReceiptHandler(receiptRepo)
	saleHandler := handler.NewSaleHandler(saleRepo)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Scanner feed: scan frames arriving over the websocket are resolved
	// against the catalog and the result is broadcast back to the stations.
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	feed := scanner.NewFeed(cache, func(r scanner.Result) {
		payload := fiber.Map{"type": "scan_result", "code": r.Code}
		if r.Err != nil {
			payload["error"] = r.Err.Error()
		} else {
			payload["product"] = r.Product
		}
		wsHub.BroadcastJSON(payload)
	}, 64)
	go feed.Run(feedCtx)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "HyperMarket POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Auth Routes (No authentication required)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat) // Heartbeat uses Auth but available to all authenticated

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)
	protected.Get("/dashboard/sales-summary", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesSummary)

	// Catalog Routes (products served from the in-memory cache)
	protected.Get("/products", middleware.RequirePrivilege("product:view"), catalogHandler.GetProducts)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), invHandler.UpdateProduct)
	protected.Get("/categories", catalogHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege("category:manage"), catalogHandler.CreateCategory)
	protected.Get("/branches", catalogHandler.GetBranches)
	protected.Post("/branches", middleware.RequirePrivilege("branch:manage"), catalogHandler.CreateBranch)

	// Checkout Routes (one session per cashier)
	checkout := protected.Group("/checkout", middleware.RequirePrivilege("checkout:operate"))
	checkout.Get("/session", checkoutHandler.GetSession)
	checkout.Delete("/session", checkoutHandler.AbandonSale)
	checkout.Post("/cart", checkoutHandler.AddToCart)
	checkout.Put("/cart/:productId", checkoutHandler.UpdateQuantity)
	checkout.Delete("/cart/:productId", checkoutHandler.RemoveFromCart)
	checkout.Post("/scan", checkoutHandler.Scan)
	checkout.Post("/complete", checkoutHandler.CompleteSale)
	checkout.Post("/confirm", checkoutHandler.ConfirmSale)
	checkout.Post("/cancel", checkoutHandler.CancelSale)

	// Receipt Routes
	protected.Get("/receipts", middleware.RequirePrivilege("receipt:view"), receiptHandler.GetReceipts)
	protected.Get("/receipts/:id", middleware.RequirePrivilege("receipt:view"), receiptHandler.GetReceipt)
	protected.Get("/receipts/:id/print", middleware.RequirePrivilege("receipt:view"), receiptHandler.PrintReceipt)
	protected.Get("/receipts/:id/pdf", middleware.RequirePrivilege("receipt:view"), receiptHandler.DownloadReceiptPDF)

	// Sale Routes
	protected.Get("/sales", middleware.RequirePrivilege("sale:view"), saleHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), saleHandler.GetSale)

	// Stock Movement Routes
	protected.Get("/movements", middleware.RequirePrivilege("movement:view"), invHandler.GetMovements)
	protected.Get("/movements/:id", middleware.RequirePrivilege("movement:view"), invHandler.GetMovement)
	protected.Post("/movements", middleware.RequirePrivilege("movement:create"), invHandler.CreateMovement)

	// User Management Routes
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			// Scanner stations push scan frames; everything else keeps the
			// connection alive.
			var frame scanMessage
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Type == "scan" && frame.Code != "" {
				// Dropped when the feed is saturated or shutting down
				feed.Push(frame.Code)
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopFeed()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("✅ MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets limited privileges (exclude user management)
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			// Exclude user creation, update, delete, and privilege update
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("✅ ADMIN role assigned limited privileges")
	}

	// CASHIER gets the register-facing subset
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			for _, code := range model.CashierPrivilegeCodes {
				if p.Code == code {
					cashierPrivileges = append(cashierPrivileges, p)
					break
				}
			}
		}
		db.Model(&cashierRole).Association("Privileges").Replace(cashierPrivileges)
		log.Println("✅ CASHIER role assigned register privileges")
	}

	// 4. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		// Create admin user
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Master Administrator",
			PhoneNumber: "",
			RoleID:      &masterRole.ID,
			IsActive:    true,
			Privileges:  masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("✅ Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}
