package main

import (
	"kickstep-be/internal/cart"
	"kickstep-be/internal/config"
	"kickstep-be/internal/db"
	"kickstep-be/internal/httpapi"
	"kickstep-be/internal/logger"
	"kickstep-be/internal/metrics"
	"kickstep-be/internal/order"
	"kickstep-be/internal/payment"
	"kickstep-be/internal/payment/webhook"
	"kickstep-be/internal/product"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	gateway := payment.NewPaygateGateway(payment.GatewayConfig{
		BaseURL:        cfg.GatewayBaseURL,
		SecretKey:      cfg.GatewaySecretKey,
		CallbackSecret: cfg.CallbackSecret,
		SuccessURL:     cfg.SuccessURL,
		CancelURL:      cfg.CancelURL,
	})
	paymentRepo := payment.NewRepository(database)
	dispatcher := payment.NewDispatcher(gateway, paymentRepo, cfg.BankAccount)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, dispatcher, cartSvc, paymentRepo, cfg.Currency)

	checkoutMetrics := &metrics.Checkout{}

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Availability: httpapi.NewAvailabilityHandler(productSvc, cartSvc),
		Cart:         httpapi.NewCartHandler(cartSvc),
		Orders:       httpapi.NewOrderHandler(orderSvc, cartSvc, paymentRepo, checkoutMetrics),
		Webhook:      webhook.NewHandler(orderSvc, gateway, paymentRepo, checkoutMetrics),
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
