package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/pkg/jwt"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// Generador de carga contra un API en marcha. Ejemplo:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -rate 500 -concurrency 50 -duration 1m -csv out/results.csv
func main() {
	var (
		cfg       Config
		jwtSecret string
		csvPath   string
	)
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "URL base del API")
	flag.Float64Var(&cfg.Rate, "rate", 500, "peticiones por segundo objetivo")
	flag.IntVar(&cfg.Concurrency, "concurrency", 50, "workers concurrentes")
	flag.DurationVar(&cfg.Duration, "duration", time.Minute, "duración de la corrida")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "semilla de la mezcla")
	flag.StringVar(&cfg.Token, "token", "", "Bearer token para rutas de escritura")
	flag.StringVar(&jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "si se indica, firma un token admin propio")
	flag.StringVar(&csvPath, "csv", "", "archivo CSV con una fila por petición")
	flag.Parse()

	log := logger.New(logger.Config{Env: "development", Level: "info"})

	if cfg.Token == "" && jwtSecret != "" {
		tok, err := jwt.Generate(jwtSecret, "loadtest", jwt.RoleAdmin, "stock-transfer-api", 60)
		if err != nil {
			log.Fatal().Err(err).Msg("firmar token")
		}
		cfg.Token = tok
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fx, err := discover(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("descubrir productos y ubicaciones")
	}
	log.Info().
		Int("products", len(fx.products)).
		Int("locations", len(fx.locations)).
		Float64("rate", cfg.Rate).
		Int("concurrency", cfg.Concurrency).
		Dur("duration", cfg.Duration).
		Str("url", cfg.BaseURL).
		Msg("iniciando carga")

	runner := NewRunner(cfg, Mix(fx), log)
	results := runner.Run(ctx)
	PrintSummary(os.Stdout, Summarize(results), runner.Elapsed())

	if csvPath != "" {
		if err := writeCSVFile(csvPath, results); err != nil {
			log.Fatal().Err(err).Msg("exportar CSV")
		}
		log.Info().Str("file", csvPath).Int("rows", len(results)).Msg("CSV exportado")
	}
}

func writeCSVFile(path string, results []Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fixtures ids existentes para armar traslados y lecturas puntuales.
type fixtures struct {
	products  []string
	locations []string
}

func discover(ctx context.Context, cfg Config) (fixtures, error) {
	client := resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(10 * time.Second)
	var fx fixtures

	var products dto.ProductListResponse
	resp, err := client.R().SetContext(ctx).SetQueryParam("limit", "100").SetResult(&products).Get("/api/products")
	if err != nil {
		return fx, err
	}
	if resp.IsError() {
		return fx, fmt.Errorf("GET /api/products: %s", resp.Status())
	}
	for _, p := range products.Items {
		fx.products = append(fx.products, p.ID)
	}

	var locations dto.LocationListResponse
	resp, err = client.R().SetContext(ctx).SetQueryParam("limit", "100").SetResult(&locations).Get("/api/locations")
	if err != nil {
		return fx, err
	}
	if resp.IsError() {
		return fx, fmt.Errorf("GET /api/locations: %s", resp.Status())
	}
	for _, l := range locations.Items {
		fx.locations = append(fx.locations, l.ID)
	}
	return fx, nil
}

// Mix mezcla ponderada de endpoints. Sin al menos un producto y dos ubicaciones no hay traslados.
func Mix(fx fixtures) []Endpoint {
	static := func(path string) func(*rand.Rand) string {
		return func(*rand.Rand) string { return path }
	}
	mix := []Endpoint{
		{Name: "GET products", Method: resty.MethodGet, Weight: 30, Path: static("/api/products")},
		{Name: "GET locations", Method: resty.MethodGet, Weight: 15, Path: static("/api/locations")},
		{Name: "GET alerts", Method: resty.MethodGet, Weight: 10, Path: static("/api/inventory/alerts")},
		{Name: "GET movements", Method: resty.MethodGet, Weight: 5, Path: static("/api/movements")},
		{
			Name: "POST products", Method: resty.MethodPost, Weight: 8, Path: static("/api/products"),
			Body: func(rng *rand.Rand) any {
				n := rng.Int63()
				return map[string]any{
					"sku":   fmt.Sprintf("LOAD-%016x", n),
					"name":  fmt.Sprintf("Load Test Product %d", n%100000),
					"price": fmt.Sprintf("%.2f", 10+rng.Float64()*190),
				}
			},
		},
		{
			Name: "POST locations", Method: resty.MethodPost, Weight: 3, Path: static("/api/locations"),
			Body: func(rng *rand.Rand) any {
				n := rng.Intn(100000)
				return map[string]any{
					"name":    fmt.Sprintf("Load Test Store %d", n),
					"address": fmt.Sprintf("Test Address %d", n),
				}
			},
		},
	}
	if len(fx.products) > 0 {
		mix = append(mix, Endpoint{
			Name: "GET product", Method: resty.MethodGet, Weight: 5,
			Path: func(rng *rand.Rand) string { return "/api/products/" + fx.products[rng.Intn(len(fx.products))] },
		})
	}
	if len(fx.products) > 0 && len(fx.locations) > 1 {
		mix = append(mix, Endpoint{
			Name: "POST transfer", Method: resty.MethodPost, Weight: 20,
			Path: static("/api/inventory/transfer"),
			Body: func(rng *rand.Rand) any {
				src := rng.Intn(len(fx.locations))
				dst := (src + 1 + rng.Intn(len(fx.locations)-1)) % len(fx.locations)
				return map[string]any{
					"product_id":              fx.products[rng.Intn(len(fx.products))],
					"source_location_id":      fx.locations[src],
					"destination_location_id": fx.locations[dst],
					"quantity":                1 + rng.Intn(3),
				}
			},
		})
	}
	return mix
}
