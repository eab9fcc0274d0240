package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"expert-ai/spendguard/pkg/breaker"
	"expert-ai/spendguard/pkg/breaker/alert"
	"expert-ai/spendguard/pkg/breaker/audit"
	"expert-ai/spendguard/pkg/pricing"
)

var simulateFlags struct {
	eventsFile string
	showDenied bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a JSONL spend log through the breaker",
	Long: `Replay a JSONL spend log through the breaker using the configured
threshold rules and print the alerts and suspensions it would produce.

Each line is one spend event:

  {"timestamp":"2026-01-15T10:00:00Z","principal_id":"user-1","org_id":"org-1","amount":12.5}

Events without an explicit amount are priced from token counts:

  {"timestamp":"2026-01-15T10:01:00Z","principal_id":"user-1","input_tokens":4000,"output_tokens":1200,"provider":"openai","model":"gpt-4"}

Examples:
  # Replay a spend log with the default rules
  spendguard simulate --events spend.jsonl

  # Replay with a custom policy and show every denied event
  spendguard simulate --config policy.yaml --events spend.jsonl --denied`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFlags.eventsFile, "events", "e", "", "JSONL spend event file (required)")
	simulateCmd.Flags().BoolVar(&simulateFlags.showDenied, "denied", false, "print each denied event")
	simulateCmd.MarkFlagRequired("events")
}

// simEvent is one line of the replay input.
type simEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	PrincipalID  string    `json:"principal_id"`
	OrgID        string    `json:"org_id,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
}

// replayClock feeds each event's timestamp to the breaker so windows
// behave as they would have at recording time.
type replayClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *replayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *replayClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	f, err := os.Open(simulateFlags.eventsFile)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	var sink audit.Sink
	switch cfg.Audit.Backend {
	case "sqlite":
		sink, err = audit.NewSQLiteSink(cfg.Audit.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open audit sink: %w", err)
		}
		defer sink.Close()
	case "memory":
		sink = audit.NewMemorySink(cfg.Audit.MaxRecords)
		defer sink.Close()
	}

	clock := &replayClock{}
	b := breaker.New(breaker.Config{
		Retention: cfg.Retention.LedgerRetention.Std(),
		Logger:    logger,
		Now:       clock.Now,
		Audit:     sink,
	})

	alerts := 0
	b.OnAlert(func(scopeKey string, rec alert.Record) {
		alerts++
		fmt.Printf("ALERT   %s  scope=%s  $%.2f > $%.2f in %s (%s)\n",
			rec.Timestamp.Format(time.RFC3339), scopeKey,
			rec.ActualSpend, rec.Threshold, rec.Window, rec.Action)
	})

	rules := cfg.Policy.BreakerRules()

	var line, denied int
	scopes := map[string]bool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		line++

		var ev simEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if ev.PrincipalID == "" {
			return fmt.Errorf("line %d: missing principal_id", line)
		}
		if !ev.Timestamp.IsZero() {
			clock.Set(ev.Timestamp)
		}

		amount := ev.Amount
		if amount == 0 && (ev.InputTokens > 0 || ev.OutputTokens > 0) {
			amount = pricing.EstimateForModel(ev.InputTokens, ev.OutputTokens, ev.Provider, ev.Model)
		}

		scopes[breaker.ScopeKey(ev.PrincipalID, ev.OrgID)] = true

		decision := b.Record(ev.PrincipalID, amount, ev.OrgID, rules)
		if !decision.Allowed {
			denied++
			if simulateFlags.showDenied {
				fmt.Printf("DENIED  %s  principal=%s  %s\n",
					clock.Now().Format(time.RFC3339), ev.PrincipalID, decision.Reason)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read events file: %w", err)
	}

	fmt.Printf("\n%d events replayed, %d denied, %d alerts\n", line, denied, alerts)

	keys := make([]string, 0, len(scopes))
	for k := range scopes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		state := "ok"
		if susp, ok := b.SuspensionFor(key); ok && susp.Suspended {
			state = "SUSPENDED (" + susp.Reason + ")"
		}
		fmt.Printf("  %-24s total=$%.2f  %s\n", key, b.Ledger().Total(key, clock.Now()), state)
	}

	return nil
}
