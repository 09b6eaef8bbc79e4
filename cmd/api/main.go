package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/api/handlers"
	"energy-trading/internal/api/middleware"
	"energy-trading/internal/config"
	"energy-trading/internal/data"
	"energy-trading/internal/metrics"
	"energy-trading/internal/sim"
	"energy-trading/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	// Load configuration (defaults cover the PJM simulation; a YAML file
	// can override datasets, dates, and cutoff).
	cfg := config.Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			slog.Error("failed to load config", "path", path, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	biddingDate, err := cfg.BiddingDate()
	if err != nil {
		slog.Error("invalid bidding date", "err", err)
		os.Exit(1)
	}
	deliveryDate, err := cfg.DeliveryDate()
	if err != nil {
		slog.Error("invalid delivery date", "err", err)
		os.Exit(1)
	}

	// Market data provider: Grid Status, keyed from the environment. The
	// cache loads lazily on /initialize, so a missing key only fails then.
	client := data.NewGridStatusClient(os.Getenv("GRIDSTATUS_API_KEY"), os.Getenv("GRIDSTATUS_BASE_URL"))
	provider := data.NewGridStatusProvider(client, cfg.Market)

	cache := sim.NewMarketCache(provider, cfg.Market.Name, biddingDate, deliveryDate)
	book := store.NewMemoryStore()
	engine := sim.NewEngine(book, cache, sim.Options{
		CutoffHour:   cfg.Simulation.CutoffHour,
		DefaultHour:  cfg.Simulation.DefaultHour,
		BiddingDate:  biddingDate,
		DeliveryDate: deliveryDate,
	})

	slog.Info("simulation configured",
		"market", cfg.Market.Name,
		"bidding_date", biddingDate.Format("2006-01-02"),
		"delivery_date", deliveryDate.Format("2006-01-02"),
		"cutoff_hour", cfg.Simulation.CutoffHour)

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	simHandler := handlers.NewSimulationHandler(engine)
	tradingHandler := handlers.NewTradingHandler(engine)
	marketHandler := handlers.NewMarketDataHandler(engine, cfg.Market.Name)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/initialize", simHandler.Initialize)
		api.POST("/refresh", simHandler.Refresh)

		api.POST("/bids", tradingHandler.PlaceBid)
		api.GET("/bids", tradingHandler.ListBids)
		api.GET("/trades", tradingHandler.ListTrades)

		api.GET("/simulation/status", simHandler.Status)
		api.POST("/simulation/advance", simHandler.Advance)
		api.POST("/simulation/back", simHandler.Back)
		api.POST("/simulation/reset", simHandler.Reset)
		api.POST("/simulation/time", simHandler.SetTime)

		api.GET("/timeseries", simHandler.TimeSeries)
		api.GET("/summary", marketHandler.Summary)
		api.GET("/markets", marketHandler.Markets)
	}

	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
