package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"energy-trading/internal/config"
	"energy-trading/internal/data"
	"energy-trading/internal/model"
	"energy-trading/internal/sim"
	"energy-trading/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --da day_ahead.json --rt real_time.json --bids bids.json [--config config.yaml]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - da/rt are Grid Status JSON responses (hourly DA, 5-min RT)")
	fmt.Println("  - bids.json is a list of {hour, price, quantity, side} objects")
	fmt.Println("  - the run places all bids, advances to the trading day, and prints P&L")
}

// scriptedBid is one entry in the --bids file.
type scriptedBid struct {
	Hour     int     `json:"hour"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Side     string  `json:"side"`
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	daPath := fs.String("da", "", "Path to day-ahead Grid Status JSON")
	rtPath := fs.String("rt", "", "Path to real-time Grid Status JSON")
	bidsPath := fs.String("bids", "", "Path to scripted bids JSON")
	cfgPath := fs.String("config", "", "Optional path to YAML config")
	_ = fs.Parse(args)

	// Keep CLI output readable: structured logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *daPath == "" || *rtPath == "" || *bidsPath == "" {
		fmt.Println("--da, --rt and --bids are required")
		os.Exit(2)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fatal("load config", err)
		}
		cfg = loaded
	}

	biddingDate, err := cfg.BiddingDate()
	if err != nil {
		fatal("bidding date", err)
	}
	deliveryDate, err := cfg.DeliveryDate()
	if err != nil {
		fatal("delivery date", err)
	}

	// The same fixture serves both reference days; a CLI run replays a
	// single recorded day.
	provider := &data.FileProvider{DayAheadPath: *daPath, RealTimePath: *rtPath}
	cache := sim.NewMarketCache(provider, cfg.Market.Name, biddingDate, deliveryDate)
	book := store.NewMemoryStore()
	engine := sim.NewEngine(book, cache, sim.Options{
		CutoffHour:   cfg.Simulation.CutoffHour,
		DefaultHour:  cfg.Simulation.DefaultHour,
		BiddingDate:  biddingDate,
		DeliveryDate: deliveryDate,
	})

	ctx := context.Background()

	result, err := engine.Initialize(ctx)
	if err != nil {
		fatal("initialize market data", err)
	}
	fmt.Printf("market data: %s (DA %d points, RT %d points)\n",
		result.Status, result.BiddingDayAheadPoints, result.BiddingRealTimePoints)

	raw, err := os.ReadFile(*bidsPath)
	if err != nil {
		fatal("read bids file", err)
	}
	var scripted []scriptedBid
	if err := json.Unmarshal(raw, &scripted); err != nil {
		fatal("parse bids file", err)
	}

	// Place bids with the clock safely before the cutoff.
	engine.SetSimulatedTime(0, 0)
	placed := 0
	for _, sb := range scripted {
		_, err := engine.PlaceBid(ctx, sim.PlaceBidParams{
			Hour:     sb.Hour,
			Price:    sb.Price,
			Quantity: sb.Quantity,
			Side:     model.Side(sb.Side),
			Owner:    "cli",
		})
		if err != nil {
			fmt.Printf("bid refused (hour %d %s @ %.2f): %v\n", sb.Hour, sb.Side, sb.Price, err)
			continue
		}
		placed++
	}
	fmt.Printf("placed %d of %d bids\n", placed, len(scripted))

	summary, err := engine.AdvanceToTradingDay(ctx)
	if err != nil {
		fatal("advance to trading day", err)
	}
	fmt.Printf("clearing: %d executed, %d rejected, %d skipped\n\n",
		summary.Executed, summary.Rejected, summary.Skipped)

	bids, err := engine.ListBids(ctx, "cli")
	if err != nil {
		fatal("list bids", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOUR\tSIDE\tBID $/MWh\tQTY MWh\tSTATUS\tCLEARING $/MWh")
	for _, b := range bids {
		clearing := "-"
		if b.ClearingPrice != nil {
			clearing = fmt.Sprintf("%.2f", *b.ClearingPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.1f\t%s\t%s\n",
			b.Hour, b.Side, b.Price, b.Quantity, b.Status, clearing)
	}
	w.Flush()
	fmt.Println()

	trades, err := engine.ListTrades(ctx, "cli")
	if err != nil {
		fatal("list trades", err)
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOUR\tSIDE\tEXEC $/MWh\tAVG RT $/MWh\tQTY MWh\tPNL $")
	var total float64
	for _, t := range trades {
		avg, pnl := "-", "-"
		if t.AvgRealTimePrice != nil {
			avg = fmt.Sprintf("%.2f", *t.AvgRealTimePrice)
		}
		if t.PnL != nil {
			pnl = fmt.Sprintf("%.2f", *t.PnL)
			total += *t.PnL
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%.1f\t%s\n",
			t.Hour, t.Side, t.ExecutedPrice, avg, t.Quantity, pnl)
	}
	w.Flush()
	fmt.Printf("\ntotal P&L: %.2f\n", total)
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	os.Exit(1)
}
