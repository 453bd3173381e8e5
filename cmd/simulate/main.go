package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/config"
	"github.com/ruthwik162/OTSchedular-Backend/internal/db"
)

// simulate hammers the booking endpoint with concurrent requests over a
// small pool of rooms and dates, so slot conflicts and duplicate-patient
// rejections actually occur, then reports outcome counts and latencies.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Rooms        []string
	Days         int // how many days ahead slots are spread over
	PatientLimit int
	PostgresDSN  string
}

type OperationMetrics struct {
	Total     int64
	Created   int64
	Conflict  int64
	Rejected  int64 // validation / not-found / insufficient staff
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&om.Created, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case status >= 400 && status < 500:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Simulator struct {
	config   SimConfig
	patients []string
	client   *http.Client
	metrics  OperationMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()

	log.Printf("config: duration=%s workers=%d rooms=%d days=%d",
		cfg.Duration, cfg.Workers, len(cfg.Rooms), cfg.Days)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	patients, err := loadPatients(ctx, pgPool, cfg.PatientLimit)
	if err != nil {
		log.Fatalf("load patients: %v", err)
	}
	if len(patients) == 0 {
		log.Fatal("no patients found, run cmd/seed first")
	}

	log.Printf("loaded %d patients", len(patients))

	sim := &Simulator{
		config:   cfg,
		patients: patients,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	rooms := []string{"OT1", "OT2"}
	if n := getInt("SIM_ROOMS", 2); n > 0 {
		rooms = rooms[:0]
		for i := 1; i <= n; i++ {
			rooms = append(rooms, fmt.Sprintf("OT%d", i))
		}
	}

	return SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		Rooms:        rooms,
		Days:         getInt("SIM_DAYS", 7),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 500),
		PostgresDSN:  baseCfg.PostgresDSN,
	}
}

func loadPatients(ctx context.Context, pool *pgxpool.Pool, limit int) ([]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT email FROM staff WHERE role = 'patient' LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	bands := booking.TimeBands()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			email := s.patients[rng.Intn(len(s.patients))]
			date := time.Now().AddDate(0, 0, rng.Intn(s.config.Days)).Format("2006-01-02")

			body, _ := json.Marshal(map[string]string{
				"date":     date,
				"timeBand": string(bands[rng.Intn(len(bands))]),
				"roomId":   s.config.Rooms[rng.Intn(len(s.config.Rooms))],
			})

			url := fmt.Sprintf("%s/ot/assign/%s", s.config.APIBaseURL, email)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				continue
			}
			req.Header.Set("Content-Type", "application/json")

			start := time.Now()
			resp, err := s.client.Do(req)
			latency := time.Since(start)

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.metrics.Record(latency, http.StatusInternalServerError)
				continue
			}

			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			s.metrics.Record(latency, resp.StatusCode)
		}
	}
}

func (s *Simulator) PrintReport() {
	avg, min, max, p50, p95 := s.metrics.Stats()

	fmt.Println()
	fmt.Println("=== booking simulation report ===")
	fmt.Printf("total:     %d\n", s.metrics.Total)
	fmt.Printf("created:   %d\n", s.metrics.Created)
	fmt.Printf("conflict:  %d\n", s.metrics.Conflict)
	fmt.Printf("rejected:  %d\n", s.metrics.Rejected)
	fmt.Printf("error:     %d\n", s.metrics.Error)
	fmt.Printf("latency:   avg=%s min=%s max=%s p50=%s p95=%s\n", avg, min, max, p50, p95)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
