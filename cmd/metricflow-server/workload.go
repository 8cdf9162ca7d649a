package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/metricflow/metricflow/pkg/metricflow"
)

type workloadManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

var wm workloadManager

func (m *workloadManager) start(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		http.Error(w, "workload already running", http.StatusConflict)
		return
	}
	rate := 100 * time.Millisecond
	if v := r.URL.Query().Get("rate_ms"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			rate = ms
		}
	}
	kinds := []string{"mean", "binary_accuracy", "f1"}
	if v := r.URL.Query().Get("kinds"); v != "" {
		kinds = strings.Split(v, ",")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go func() { runEvaluationLoop(ctx, kinds, rate) }()
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "workload started: kinds=%s rate=%v\n", strings.Join(kinds, ","), rate)
}

func (m *workloadManager) stop(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "workload stopped\n")
}

// runEvaluationLoop feeds random batches to a session until cancelled,
// resetting every 100 batches so counters keep moving
func runEvaluationLoop(ctx context.Context, kinds []string, hz time.Duration) {
	runID := fmt.Sprintf("load-%d", time.Now().UnixNano())
	session, err := metricflow.NewSession(ctx, runID, kinds)
	if err != nil {
		log.Printf("workload session error: %v", err)
		return
	}

	ticker := time.NewTicker(hz)
	defer ticker.Stop()

	batches := 0
	for {
		select {
		case <-ctx.Done():
			if _, err := session.Finish(ctx); err != nil {
				log.Printf("workload finish error: %v", err)
			}
			return
		case <-ticker.C:
			if err := session.Update(ctx, randomBatch(32)); err != nil {
				log.Printf("workload update error: %v", err)
				continue
			}
			if _, err := session.Results(); err != nil {
				log.Printf("workload results error: %v", err)
			}
			batches++
			if batches%100 == 0 {
				if err := session.Reset(); err != nil {
					log.Printf("workload reset error: %v", err)
				}
			}
		}
	}
}

func randomBatch(n int) metricflow.Batch {
	values := make([]float64, n)
	truth := make([]float64, n)
	for i := range values {
		values[i] = rand.Float64()
		if rand.Intn(2) == 1 {
			truth[i] = 1
		}
	}
	return metricflow.Batch{Values: values, Truth: truth}
}
