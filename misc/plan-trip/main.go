package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/kr/pretty"

	"tow-trip-planner/internal/app"
	"tow-trip-planner/internal/config"
	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
)

var errUsage = errors.New("usage: plan-trip [flags] <origin> <destination>")

type invocation struct {
	req     models.PlanRequest
	verbose bool
}

// parseArgs turns command line arguments into a plan request. Route hints
// are only set when -route-hints is given, so the configured default
// applies otherwise.
func parseArgs(args []string, output io.Writer) (*invocation, error) {
	fs := flag.NewFlagSet("plan-trip", flag.ContinueOnError)
	fs.SetOutput(output)
	var (
		class     = fs.String("class", string(models.ClassPickup2), "vehicle class (class1..class4, classA, classB, classBPlus, classC, superC)")
		wheels    = fs.String("wheels", string(models.WheelSingleRear), "wheel config for pickups (srw or drw)")
		fuelType  = fs.String("fuel", string(models.FuelDiesel), "fuel type (gas or diesel)")
		load      = fs.String("load", string(models.LoadTowing), "load status (empty, loaded, towing)")
		trailer   = fs.Float64("trailer", 0, "trailer weight in lbs when towing")
		roundTrip = fs.Bool("round-trip", false, "plan an out and back trip")
		price     = fs.Float64("price", 0, "fuel price per gallon; 0 uses the live price")
		hints     = fs.Bool("route-hints", false, "refine MPG with elevation and highway share; unset follows ROUTE_AWARE_MPG")
		verbose   = fs.Bool("v", false, "dump the full plan")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), errUsage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, errUsage
	}

	inv := &invocation{
		req: models.PlanRequest{
			Origin:      fs.Arg(0),
			Destination: fs.Arg(1),
			Vehicle: models.VehicleProfile{
				VehicleClass:     models.VehicleClass(*class),
				WheelConfig:      models.WheelConfig(*wheels),
				FuelType:         models.FuelType(*fuelType),
				LoadStatus:       models.LoadStatus(*load),
				TrailerWeightLbs: *trailer,
			},
			IsRoundTrip: *roundTrip,
		},
		verbose: *verbose,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "route-hints" {
			inv.req.UseRouteHints = hints
		}
	})
	if *price > 0 {
		inv.req.FuelPriceOverride = price
	}
	return inv, nil
}

func main() {
	inv, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	services, err := app.Build(cfg, zl)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	plan, err := services.Trip.Plan(ctx, inv.req)
	if err != nil {
		var perr *models.PlanError
		if errors.As(err, &perr) {
			log.Fatalf("%s (%s)", perr.Message(), models.Kind(err))
		}
		log.Fatalf("Failed to plan trip: %v", err)
	}

	if inv.verbose {
		pretty.Println(plan)
		return
	}

	e := plan.Estimate
	fmt.Printf("%s -> %s", plan.Origin, plan.Destination)
	if e.IsRoundTrip {
		fmt.Print(" (round trip)")
	}
	fmt.Println()
	fmt.Printf("  distance   %.1f mi\n", e.DistanceMiles)
	fmt.Printf("  duration   %.1f h\n", e.DurationHours)
	fmt.Printf("  mpg        %.1f\n", e.EstimatedMPG)
	fmt.Printf("  fuel       %.1f gal at $%.2f (%s)\n", e.FuelGallons, e.PricePerGallon, e.PriceSource)
	fmt.Printf("  cost       $%.2f ($%.3f/mi)\n", e.FuelCost, e.CostPerMile)
}
