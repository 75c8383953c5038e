package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// Config parámetros de una corrida.
type Config struct {
	BaseURL     string
	Rate        float64 // peticiones por segundo, total
	Concurrency int
	Duration    time.Duration
	Token       string // Bearer opcional para rutas de escritura
	Seed        int64
	Timeout     time.Duration
}

// Endpoint entrada de la mezcla ponderada. Body nil = sin cuerpo.
type Endpoint struct {
	Name   string
	Method string
	Weight int
	Path   func(rng *rand.Rand) string
	Body   func(rng *rand.Rand) any
}

// Result una petición ejecutada.
type Result struct {
	At       time.Time
	Endpoint string
	Method   string
	Status   int
	Latency  time.Duration
	Err      string
}

// Success 2xx.
func (r Result) Success() bool { return r.Err == "" && r.Status >= 200 && r.Status < 300 }

// Runner generador de carga sobre resty.
type Runner struct {
	cfg       Config
	client    *resty.Client
	log       *logger.Logger
	endpoints []Endpoint
	total     int

	mu      sync.Mutex
	results []Result
	started time.Time
	elapsed time.Duration
}

func NewRunner(cfg Config, endpoints []Endpoint, log *logger.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	if log == nil {
		log = logger.Nop()
	}
	r := &Runner{cfg: cfg, client: client, log: log.Component("loadtest")}
	for _, e := range endpoints {
		if e.Weight > 0 {
			r.endpoints = append(r.endpoints, e)
			r.total += e.Weight
		}
	}
	return r
}

// pick elige un endpoint con probabilidad proporcional a su peso.
func (r *Runner) pick(rng *rand.Rand) Endpoint {
	n := rng.Intn(r.total)
	for _, e := range r.endpoints {
		if n < e.Weight {
			return e
		}
		n -= e.Weight
	}
	return r.endpoints[len(r.endpoints)-1]
}

// Run dispara peticiones a la tasa configurada hasta agotar Duration o cancelar ctx.
func (r *Runner) Run(ctx context.Context) []Result {
	if len(r.endpoints) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	r.started = time.Now()
	ticks := make(chan struct{}, r.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(r.cfg.Seed + int64(worker)))
			for range ticks {
				res := r.do(ctx, rng, r.pick(rng))
				if res.Err != "" && ctx.Err() != nil {
					continue // cortada al cierre de la corrida
				}
				r.record(res)
			}
		}(i)
	}

	r.pace(ctx, ticks)
	close(ticks)
	wg.Wait()
	r.elapsed = time.Since(r.started)

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// pace emite un tick por petición. Si todos los workers están ocupados el tick se descarta.
func (r *Runner) pace(ctx context.Context, ticks chan<- struct{}) {
	interval := time.Microsecond
	if r.cfg.Rate > 0 {
		interval = time.Duration(float64(time.Second) / r.cfg.Rate)
	}
	if interval <= 0 {
		interval = time.Microsecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	progress := time.NewTicker(10 * time.Second)
	defer progress.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-progress.C:
			r.mu.Lock()
			n := len(r.results)
			r.mu.Unlock()
			secs := time.Since(r.started).Seconds()
			r.log.Info().Int("requests", n).Float64("rps", float64(n)/secs).Msg("progress")
		case <-ticker.C:
			select {
			case ticks <- struct{}{}:
			default:
			}
		}
	}
}

func (r *Runner) do(ctx context.Context, rng *rand.Rand, e Endpoint) Result {
	path := e.Path(rng)
	req := r.client.R().SetContext(ctx)
	if e.Body != nil {
		req.SetBody(e.Body(rng))
	}
	start := time.Now()
	resp, err := req.Execute(e.Method, path)
	res := Result{At: start, Endpoint: e.Name, Method: e.Method, Latency: time.Since(start)}
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Status = resp.StatusCode()
	return res
}

func (r *Runner) record(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

// Elapsed duración real de la última corrida.
func (r *Runner) Elapsed() time.Duration { return r.elapsed }

// EndpointStats métricas agregadas por endpoint.
type EndpointStats struct {
	Name     string
	Requests int
	Success  int
	Statuses map[int]int
	Errors   int
	Avg      time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// Summarize agrupa resultados por endpoint, ordenados por nombre. La latencia se mide sobre todas las respuestas.
func Summarize(results []Result) []EndpointStats {
	byName := map[string][]Result{}
	for _, res := range results {
		byName[res.Endpoint] = append(byName[res.Endpoint], res)
	}
	out := make([]EndpointStats, 0, len(byName))
	for name, rs := range byName {
		st := EndpointStats{Name: name, Requests: len(rs), Statuses: map[int]int{}}
		latencies := make([]time.Duration, 0, len(rs))
		var sum time.Duration
		for _, res := range rs {
			if res.Err != "" {
				st.Errors++
				continue
			}
			if res.Success() {
				st.Success++
			}
			st.Statuses[res.Status]++
			latencies = append(latencies, res.Latency)
			sum += res.Latency
		}
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		if len(latencies) > 0 {
			st.Avg = sum / time.Duration(len(latencies))
			st.Max = latencies[len(latencies)-1]
		}
		st.P50 = Percentile(latencies, 50)
		st.P95 = Percentile(latencies, 95)
		st.P99 = Percentile(latencies, 99)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Percentile nearest-rank sobre latencias ya ordenadas. Vacío = 0.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// WriteCSV una fila por petición.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "endpoint", "method", "status_code", "response_time_ms", "success", "error"}); err != nil {
		return err
	}
	for _, res := range results {
		row := []string{
			res.At.UTC().Format(time.RFC3339Nano),
			res.Endpoint,
			res.Method,
			strconv.Itoa(res.Status),
			strconv.FormatFloat(float64(res.Latency.Microseconds())/1000, 'f', 3, 64),
			strconv.FormatBool(res.Success()),
			res.Err,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrintSummary tabla legible con totales y percentiles por endpoint.
func PrintSummary(w io.Writer, stats []EndpointStats, elapsed time.Duration) {
	var total, success int
	for _, st := range stats {
		total += st.Requests
		success += st.Success
	}
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = 1
	}
	fmt.Fprintf(w, "duración %.1fs, %d peticiones, %.1f rps, éxito %.1f%%\n",
		elapsed.Seconds(), total, float64(total)/secs, pct(success, total))
	fmt.Fprintf(w, "%-22s %8s %8s %8s %10s %10s %10s %10s  %s\n",
		"endpoint", "reqs", "ok%", "errors", "avg", "p50", "p95", "p99", "status")
	for _, st := range stats {
		fmt.Fprintf(w, "%-22s %8d %7.1f%% %8d %10s %10s %10s %10s  %s\n",
			st.Name, st.Requests, pct(st.Success, st.Requests), st.Errors,
			st.Avg.Round(time.Microsecond), st.P50.Round(time.Microsecond),
			st.P95.Round(time.Microsecond), st.P99.Round(time.Microsecond),
			formatStatuses(st.Statuses))
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func formatStatuses(m map[int]int) string {
	codes := make([]int, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	s := ""
	for i, code := range codes {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d:%d", code, m[code])
	}
	return s
}
