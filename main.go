package main

import (
	"log"

	"github.com/avtoyurist/docbot/config"
	"github.com/avtoyurist/docbot/controllers"
	"github.com/avtoyurist/docbot/drafting"
	"github.com/avtoyurist/docbot/gateway"
	"github.com/avtoyurist/docbot/orders"
	"github.com/avtoyurist/docbot/routes"
	"github.com/avtoyurist/docbot/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables; missing required values are fatal
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	if err := config.InitDB(); err != nil {
		utils.LogError("Failed to initialize database: %v", err)
		log.Fatal("Failed to initialize database:", err)
	}

	store := orders.NewStore(config.DB)
	lifecycle := orders.NewLifecycle(store, cfg.PayTTL, cfg.AccessTTL)

	gw, err := gateway.NewTelegram(cfg.BotToken)
	if err != nil {
		utils.LogError("Failed to connect to the messaging gateway: %v", err)
		log.Fatal("Failed to connect to the messaging gateway:", err)
	}

	drafter := drafting.New(cfg.DraftAPIURL, cfg.DraftAPIKey, cfg.DraftModel)
	gate := controllers.NewGenerationGate(gw, drafter, cfg.DraftTimeout)
	handler := controllers.NewUpdateHandler(gw, store, lifecycle, gate, cfg.PayoutAccount, cfg.OperatorEmail)
	admin := controllers.NewAdminController(store)

	// Set up router
	router := routes.SetupRouter(handler, admin, cfg.AdminToken)

	if err := gw.RegisterWebhook(cfg.WebhookURL); err != nil {
		utils.LogError("Failed to register webhook: %v", err)
		log.Fatal("Failed to register webhook:", err)
	}

	utils.LogInfo("Bot started, server listening on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
