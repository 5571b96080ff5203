// Package main is the entry point for the BrainRush arena server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/engine"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/events"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/infra/cache"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/infra/storage"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/network"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/config"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/logger"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/metrics"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.SessionEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.SessionEvent{
		ID:        event.ID,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		GameID:    event.GameID,
		Question:  event.Question,
		Payload:   payloadMap,
	}

	start := time.Now()
	err := a.repo.Append(context.Background(), storageEvent)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

func main() {
	log.Println("[ARENA-SERVER] Initializing BrainRush Arena Server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	if err := game.ValidateTables(); err != nil {
		appLogger.Error("Game catalog is broken: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}
	snapRepo := storage.NewSQLiteSnapshotRepository(db)
	reconstructor := storage.NewReconstructor(eventRepo)

	recoverOrphanSessions(snapRepo, reconstructor, appLogger)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Session Manager...")
	manager := engine.NewManager(eventLog, appLogger)

	// Session cache over an in-process backend; swap in a Redis-backed
	// client here to share the leaderboard across nodes.
	sessionCache := cache.NewSessionCache(cache.NewMemoryClient())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Automated State Backup Routine
	go func() {
		backupTicker := time.NewTicker(time.Duration(cfg.SnapshotPeriodSec) * time.Second)
		defer backupTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-backupTicker.C:
				scores := make(map[string]int)
				for _, sum := range manager.Snapshot() {
					scores[sum.SessionID] = sum.Score
					snap := storage.SessionSnapshot{
						SessionID:   sum.SessionID,
						Mode:        string(sum.Mode),
						Score:       sum.Score,
						BestStreak:  sum.BestStreak,
						Correct:     sum.Correct,
						Wrong:       sum.Wrong,
						SessionXP:   sum.SessionXP,
						PeakTension: sum.PeakTension,
					}
					if s := manager.Get(sum.SessionID); s != nil {
						hot := s.Hot()
						snap.Phase = string(hot.Phase)
						_ = sessionCache.SetSessionState(ctx, cache.SessionState{
							SessionID:   sum.SessionID,
							Mode:        string(sum.Mode),
							Phase:       string(hot.Phase),
							Score:       sum.Score,
							Streak:      hot.Streak,
							Tier:        hot.Tier,
							Tension:     hot.Tension,
							CurrentGame: string(hot.CurrentGame),
							LastSync:    time.Now().Unix(),
						})
					}
					_ = snapRepo.Upsert(ctx, snap)
				}
				_ = sessionCache.SetLeaderboard(ctx, scores)
			}
		}
	}()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(manager, appLogger, network.Tuning{
		SendBuffer:        cfg.ClientSendBuffer,
		MinActionInterval: time.Second / time.Duration(cfg.MaxActionsPerSec),
	})
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Setup API Routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	http.HandleFunc("/api/session/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		type requestParams struct {
			Mode      string `json:"mode"`
			StartTier int    `json:"start_tier"`
			Seed      int64  `json:"seed"`
		}
		var req requestParams
		_ = json.NewDecoder(r.Body).Decode(&req)

		mode := engine.ModeTimed
		if req.Mode == string(engine.ModeEndless) {
			mode = engine.ModeEndless
		}
		startTier := req.StartTier
		if startTier == 0 {
			startTier = cfg.StartTier
		}

		session := manager.Create(engine.SessionConfig{
			Mode:      mode,
			StartTier: startTier,
			Duration:  time.Duration(cfg.TimedDurationSec) * time.Second,
			Seed:      req.Seed,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "ok",
			"session_id": session.ID(),
		})
	})

	http.HandleFunc("/api/session/summary", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		session := manager.Get(id)
		if session == nil {
			http.Error(w, "Unknown session", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session.Summary())
	})

	http.HandleFunc("/api/session/replay", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		recap, err := reconstructor.Recap(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(recap)
	})

	http.HandleFunc("/api/sessions/recent", func(w http.ResponseWriter, r *http.Request) {
		snaps, err := snapRepo.ListRecent(r.Context(), 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snaps)
	})

	http.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		board, err := sessionCache.GetLeaderboard(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(board)
	})

	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Printf("[ARENA-SERVER] HTTP API & WS Server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[ARENA-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ARENA-SERVER] Shutting down...")
}

// recoverOrphanSessions closes out snapshots a previous process left
// mid-play. Live state cannot survive a restart, but the ledger can: the
// final tallies are rebuilt from events before the snapshot is marked done.
func recoverOrphanSessions(snapRepo *storage.SQLiteSnapshotRepository, rec *storage.Reconstructor, log *logger.Logger) {
	ctx := context.Background()
	snaps, err := snapRepo.ListRecent(ctx, 100)
	if err != nil {
		log.Errorf("Orphan scan failed: %v", err)
		return
	}

	for _, snap := range snaps {
		if snap.Phase == string(engine.PhaseGameOver) {
			continue
		}
		rebuilt, err := rec.RebuildSummary(ctx, snap.SessionID)
		if err != nil {
			log.Errorf("Could not rebuild orphan %s: %v", snap.SessionID, err)
			continue
		}
		snap.Phase = string(engine.PhaseGameOver)
		snap.Correct = rebuilt.Correct
		snap.Wrong = rebuilt.Wrong
		snap.Score = rebuilt.Score
		snap.PeakTension = rebuilt.PeakTension
		if err := snapRepo.Upsert(ctx, snap); err != nil {
			log.Errorf("Could not finalize orphan %s: %v", snap.SessionID, err)
			continue
		}
		log.Infof("Recovered orphan session %s (score %d)", snap.SessionID, snap.Score)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Mobile clients connect from app webviews with no origin
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
