package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// BackupMeta describes one stored database image.
type BackupMeta struct {
	BackupID   string    `json:"backup_id"`
	Size       int       `json:"size"`
	ReceivedAt time.Time `json:"received_at"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	BackupID   string    `json:"backup_id"`
	Size       int       `json:"size"`
	ReceivedAt time.Time `json:"received_at"`
	StoreID    string    `json:"store_id"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	StoreID     string    `json:"store_id"`
	Timestamp   time.Time `json:"timestamp"`
	BackupCount int       `json:"backup_count"`
	AcceptRate  float64   `json:"accept_rate"`
}

// MockBackupStore simulates a remote backup service. Images live in
// memory; restarting the daemon loses them, which is exactly what a
// test double should do.
type MockBackupStore struct {
	mu         sync.RWMutex
	images     map[string][]byte
	meta       map[string]BackupMeta
	acceptRate float64
	minDelay   time.Duration
	maxDelay   time.Duration
	storeID    string
	rng        *rand.Rand
}

func NewMockBackupStore(acceptRate float64, minDelay, maxDelay time.Duration) *MockBackupStore {
	return &MockBackupStore{
		images:     make(map[string][]byte),
		meta:       make(map[string]BackupMeta),
		acceptRate: acceptRate,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		storeID:    "MOCK_BACKUP_" + uuid.New().String()[:8],
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockBackupStore) store(data []byte) UploadResponse {
	// Simulate the network transfer
	time.Sleep(m.randomDelay())

	id := uuid.New().String()
	meta := BackupMeta{
		BackupID:   id,
		Size:       len(data),
		ReceivedAt: time.Now(),
	}

	m.mu.Lock()
	m.images[id] = data
	m.meta[id] = meta
	m.mu.Unlock()

	log.Info().
		Str("backup_id", id).
		Int("size", len(data)).
		Msg("Backup image stored")

	return UploadResponse{
		BackupID:   id,
		Size:       meta.Size,
		ReceivedAt: meta.ReceivedAt,
		StoreID:    m.storeID,
	}
}

func (m *MockBackupStore) fetch(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.images[id]
	return data, ok
}

func (m *MockBackupStore) list() []BackupMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BackupMeta, 0, len(m.meta))
	for _, meta := range m.meta {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out
}

func (m *MockBackupStore) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

func (m *MockBackupStore) shouldAccept() bool {
	return m.rng.Float64() < m.acceptRate
}

func (m *MockBackupStore) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

// Handler struct holds the mock store and routes
type Handler struct {
	store *MockBackupStore
}

func NewHandler(store *MockBackupStore) *Handler {
	return &Handler{store: store}
}

// Upload accepts a raw database image in the request body
func (h *Handler) Upload(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if len(data) < len(sqliteMagic) || !bytes.Equal(data[:len(sqliteMagic)], sqliteMagic) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Payload is not a sqlite database image",
		})
		return
	}

	if !h.store.shouldAccept() {
		log.Warn().Int("size", len(data)).Msg("Backup upload rejected")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Backup store temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusCreated, h.store.store(data))
}

// Download streams a stored image back
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("backup_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "backup_id is required",
		})
		return
	}

	data, ok := h.store.fetch(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "backup not found",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.db"`, id))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// List returns metadata for every stored image, newest first
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"backups": h.store.list(),
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		StoreID:     h.store.storeID,
		Timestamp:   time.Now(),
		BackupCount: h.store.count(),
		AcceptRate:  h.store.acceptRate,
	})
}

// UpdateConfig allows changing store behavior at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		AcceptRate *float64 `json:"accept_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.AcceptRate != nil {
		if *config.AcceptRate >= 0 && *config.AcceptRate <= 1.0 {
			h.store.acceptRate = *config.AcceptRate
			log.Info().Float64("rate", *config.AcceptRate).Msg("Updated accept rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Configuration updated",
		"accept_rate": h.store.acceptRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backups", handler.Upload)
		v1.GET("/backups", handler.List)
		v1.GET("/backups/:backup_id", handler.Download)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8082")
	acceptRate := getEnvFloat("ACCEPT_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 2*time.Second)

	log.Info().
		Str("port", port).
		Float64("accept_rate", acceptRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Backup Store")

	store := NewMockBackupStore(acceptRate, minDelay, maxDelay)
	handler := NewHandler(store)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
