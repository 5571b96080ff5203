// Package main - agitator
// Load generator for stress testing the arena server.
// Simulates dozens of concurrent players answering rounds over WebSocket.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the agitator
type Config struct {
	ServerURL    string
	APIURL       string
	NumClients   int
	PauseChance  float64
	Accuracy     float64
	TestDuration time.Duration
	Mode         string
}

// Stats tracks performance metrics
type Stats struct {
	SessionsOpened int64
	RoundsReceived int64
	AnswersSent    int64
	Errors         int64
	Latencies      []time.Duration
	mu             sync.Mutex
}

// roundMessage is the slice of the server push the bot cares about.
type roundMessage struct {
	Type  string `json:"type"`
	Round struct {
		SessionID string `json:"session_id"`
		Question  struct {
			Choices     []string `json:"choices"`
			AnswerIndex int      `json:"answer_index"`
		} `json:"question"`
	} `json:"round"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	apiURL := flag.String("api", "http://localhost:8080", "HTTP API base URL")
	numClients := flag.Int("clients", 50, "Number of concurrent clients")
	accuracy := flag.Float64("accuracy", 0.7, "Probability a bot answers correctly")
	pauseChance := flag.Float64("pause", 0.02, "Per-round probability of a pause/resume cycle")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	mode := flag.String("mode", "TIMED", "Session mode: TIMED or ENDLESS")
	flag.Parse()

	config := Config{
		ServerURL:    *serverURL,
		APIURL:       *apiURL,
		NumClients:   *numClients,
		Accuracy:     *accuracy,
		PauseChance:  *pauseChance,
		TestDuration: *duration,
		Mode:         strings.ToUpper(*mode),
	}

	fmt.Println("=========================================")
	fmt.Println("🔥 AGITATOR - Arena Stress Test Tool")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Clients: %d\n", config.NumClients)
	fmt.Printf("Accuracy: %.0f%%\n", config.Accuracy*100)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Printf("Mode: %s\n", config.Mode)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\n⚠️ Interrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)

	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\n🚀 Starting clients...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("✅ All %d clients started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rounds := atomic.LoadInt64(&stats.RoundsReceived)
				answers := atomic.LoadInt64(&stats.AnswersSent)
				errs := atomic.LoadInt64(&stats.Errors)
				fmt.Printf("📊 Progress: Rounds=%d Answers=%d Errors=%d\n", rounds, answers, errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))

	sessionID, err := openSession(ctx, config, rng.Int63())
	if err != nil {
		log.Printf("Client %d: Session create failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	atomic.AddInt64(&stats.SessionsOpened, 1)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	join := map[string]interface{}{"type": "JOIN", "session_id": sessionID}
	if err := conn.WriteJSON(join); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}

	rounds := make(chan roundMessage, 8)
	go func() {
		defer close(rounds)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg roundMessage
			if json.Unmarshal(data, &msg) != nil || msg.Type != "ROUND" {
				continue
			}
			if msg.Round.SessionID != sessionID {
				continue
			}
			select {
			case rounds <- msg:
			default:
			}
		}
	}()

	// Ask for the first round once the countdown is over
	time.Sleep(3500 * time.Millisecond)
	askRound := map[string]interface{}{"type": "ROUND", "session_id": sessionID}
	if err := conn.WriteJSON(askRound); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-rounds:
			if !ok {
				return
			}
			atomic.AddInt64(&stats.RoundsReceived, 1)

			// Humans do not answer instantly
			time.Sleep(time.Duration(300+rng.Intn(900)) * time.Millisecond)

			if rng.Float64() < config.PauseChance {
				conn.WriteJSON(map[string]interface{}{"type": "PAUSE", "session_id": sessionID})
				time.Sleep(500 * time.Millisecond)
				conn.WriteJSON(map[string]interface{}{"type": "RESUME", "session_id": sessionID})
			}

			choice := msg.Round.Question.AnswerIndex
			if rng.Float64() > config.Accuracy && len(msg.Round.Question.Choices) > 1 {
				choice = (choice + 1 + rng.Intn(len(msg.Round.Question.Choices)-1)) % len(msg.Round.Question.Choices)
			}

			answer := map[string]interface{}{
				"type":       "ANSWER",
				"session_id": sessionID,
				"payload":    map[string]int{"choice": choice},
			}

			start := time.Now()
			if err := conn.WriteJSON(answer); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			latency := time.Since(start)
			atomic.AddInt64(&stats.AnswersSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()

			// Sudden death in endless mode: always burn the continue.
			// The gap keeps the pair under the server's action rate limit.
			if config.Mode == "ENDLESS" {
				time.Sleep(150 * time.Millisecond)
				conn.WriteJSON(map[string]interface{}{"type": "CONTINUE", "session_id": sessionID})
			}
		}
	}
}

func openSession(ctx context.Context, config Config, seed int64) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"mode": config.Mode,
		"seed": seed,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		config.APIURL+"/api/session/start", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("📊 STRESS TEST RESULTS")
	fmt.Println("=========================================")

	opened := atomic.LoadInt64(&stats.SessionsOpened)
	rounds := atomic.LoadInt64(&stats.RoundsReceived)
	answers := atomic.LoadInt64(&stats.AnswersSent)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Sessions Opened:   %d\n", opened)
	fmt.Printf("Rounds Received:   %d\n", rounds)
	fmt.Printf("Answers Sent:      %d\n", answers)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(answers+1)*100)

	throughput := float64(answers) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f answers/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nWrite Latency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 && opened == int64(config.NumClients) {
		fmt.Println("✅ TEST PASSED: System handled the load")
	} else if float64(errs)/float64(answers+1) < 0.05 {
		fmt.Println("⚠️ TEST WARNING: Some errors detected")
	} else {
		fmt.Println("❌ TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"sessions_opened":    opened,
		"rounds_received":    rounds,
		"answers_sent":       answers,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"accuracy": config.Accuracy,
			"duration": config.TestDuration.String(),
			"mode":     config.Mode,
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("stress_test_results.json", jsonData, 0644)
	fmt.Println("\n📁 Results saved to stress_test_results.json")
}
