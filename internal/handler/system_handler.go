package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/response"
	"github.com/stemsi/quizgate/internal/service"
	"github.com/stemsi/quizgate/internal/worker"
)

const metricsInterval = 7 * time.Second

// SystemHandler reports liveness and streams runtime metrics via SSE.
// queue is nil when the score ledger is disabled.
type SystemHandler struct {
	quizService *service.QuizService
	queue       *worker.ScoreQueue
	startTime   time.Time
	log         zerolog.Logger
}

func NewSystemHandler(quizService *service.QuizService, queue *worker.ScoreQueue, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		quizService: quizService,
		queue:       queue,
		startTime:   time.Now(),
		log:         log.With().Str("component", "system_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Sessions   int    `json:"sessions"`
	CorpusSize int    `json:"corpus_size"`
	Uptime     string `json:"uptime"`
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	sessions, bankSize := h.quizService.Stats()
	status := "ok"
	if bankSize == 0 {
		status = "degraded"
	}
	response.Success(c, http.StatusOK, healthStatus{
		Status:     status,
		Sessions:   sessions,
		CorpusSize: bankSize,
		Uptime:     formatDuration(time.Since(h.startTime)),
	})
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Quiz
	Sessions   int `json:"sessions"`
	CorpusSize int `json:"corpus_size"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`

	// Ledger
	QueueScores int64 `json:"queue_scores"`
}

// SystemMetricsSSE godoc
// GET /api/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Debug().Msg("Metrics SSE client connected")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Msg("Metrics SSE client disconnected")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
	}
	m.Sessions, m.CorpusSize = h.quizService.Stats()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.NumGC = ms.NumGC
	m.AppRSSBytes, _ = readProcessRSS()

	if h.queue != nil {
		m.QueueScores, _ = h.queue.Len(ctx)
	}
	return m
}

// ---------- /proc Reader ----------

// parseKBValue reads a "/proc" status line such as "VmRSS:   1024 kB" as bytes.
func parseKBValue(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	val, _ := strconv.ParseUint(fields[1], 10, 64)
	return val * 1024
}

// readProcessRSS reads VmRSS from /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseKBValue(line), nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
