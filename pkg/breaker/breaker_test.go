package breaker

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"expert-ai/spendguard/pkg/breaker/alert"
)

// fakeClock is a manually-advanced time source for deterministic window
// tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := newFakeClock()
	return New(Config{Now: clock.Now}), clock
}

var standardRules = []Rule{
	{Amount: 50, Window: time.Hour, Action: ActionAlert},
	{Amount: 100, Window: time.Hour, Action: ActionSuspend},
}

// ============================================================================
// Recording and Spend Tests
// ============================================================================

func TestBreaker_Record_RunningSum(t *testing.T) {
	b, _ := newTestBreaker()

	amounts := []float64{1.25, 2.50, 0.75}
	for _, amount := range amounts {
		decision := b.Record("user-1", amount, "", nil)
		if !decision.Allowed {
			t.Fatalf("Expected record with no rules to be allowed, got %+v", decision)
		}
	}

	if spend := b.CurrentSpend("user-1", ""); spend != 4.50 {
		t.Errorf("Expected current spend 4.50, got %.2f", spend)
	}
}

func TestBreaker_ScopeKey_OrgSharesBudget(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-a", 60, "org-1", nil)
	b.Record("user-b", 50, "org-1", nil)

	if spend := b.CurrentSpend("user-a", "org-1"); spend != 110 {
		t.Errorf("Expected user-a org spend 110, got %.2f", spend)
	}
	if spend := b.CurrentSpend("user-b", "org-1"); spend != 110 {
		t.Errorf("Expected user-b org spend 110, got %.2f", spend)
	}

	// Individual scope is untouched
	if spend := b.CurrentSpend("user-a", ""); spend != 0 {
		t.Errorf("Expected empty individual scope, got %.2f", spend)
	}
}

func TestBreaker_OrgSuspensionCoversAllMembers(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-a", 60, "org-1", standardRules)
	decision := b.Record("user-b", 50, "org-1", standardRules)

	if decision.Allowed {
		t.Fatal("Expected combined org spend to trigger suspension")
	}
	if !b.IsSuspended("user-a", "org-1") {
		t.Error("Expected user-a suspended via org scope")
	}
	if !b.IsSuspended("user-b", "org-1") {
		t.Error("Expected user-b suspended via org scope")
	}
	if b.IsSuspended("user-a", "") {
		t.Error("Expected user-a individual scope unaffected")
	}
}

// ============================================================================
// Threshold Evaluation Tests
// ============================================================================

func TestBreaker_AlertRule_AllowsAndRecords(t *testing.T) {
	b, _ := newTestBreaker()

	var dispatched []alert.Record
	b.OnAlert(func(scopeKey string, rec alert.Record) {
		dispatched = append(dispatched, rec)
	})

	decision := b.Record("user-1", 60, "", standardRules)
	if !decision.Allowed {
		t.Fatalf("Expected alert-only crossing to be allowed, got %+v", decision)
	}

	records := b.Alerts("user-1")
	if len(records) != 1 {
		t.Fatalf("Expected 1 alert record, got %d", len(records))
	}
	if records[0].Threshold != 50 || records[0].ActualSpend != 60 {
		t.Errorf("Unexpected alert record: %+v", records[0])
	}
	if records[0].Action != string(ActionAlert) {
		t.Errorf("Expected alert action, got %q", records[0].Action)
	}

	if len(dispatched) != 1 || dispatched[0].ID != records[0].ID {
		t.Errorf("Expected subscriber invoked exactly once with the record, got %d calls", len(dispatched))
	}
}

func TestBreaker_SuspendRule_DeniesAndSuspends(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-1", 60, "", standardRules)
	decision := b.Record("user-1", 50, "", standardRules)

	if decision.Allowed {
		t.Fatal("Expected suspension crossing to be denied")
	}
	if !strings.Contains(decision.Reason, "$100.00") {
		t.Errorf("Expected reason to name the exceeded amount, got %q", decision.Reason)
	}
	if !b.IsSuspended("user-1", "") {
		t.Error("Expected scope suspended after crossing")
	}

	s, ok := b.SuspensionFor("user-1")
	if !ok || !s.Suspended {
		t.Fatalf("Expected stored suspension, got %+v (ok=%v)", s, ok)
	}
}

func TestBreaker_AllRulesEvaluated_NoShortCircuit(t *testing.T) {
	b, _ := newTestBreaker()

	// A single call that crosses both the alert and suspend thresholds
	// must record both crossings.
	decision := b.Record("user-1", 150, "", standardRules)
	if decision.Allowed {
		t.Fatal("Expected denial")
	}

	records := b.Alerts("user-1")
	if len(records) != 2 {
		t.Fatalf("Expected both rules to fire, got %d records", len(records))
	}
	if records[0].Action != string(ActionAlert) || records[1].Action != string(ActionSuspend) {
		t.Errorf("Expected alert then suspend in rule order, got %q, %q",
			records[0].Action, records[1].Action)
	}
}

func TestBreaker_SuspendedScope_DeniedWithoutEvaluation(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-1", 150, "", standardRules)
	before := len(b.Alerts("user-1"))

	decision := b.Record("user-1", 1, "", standardRules)
	if decision.Allowed {
		t.Fatal("Expected suspended scope to be denied")
	}
	if !strings.HasPrefix(decision.Reason, "Account suspended:") {
		t.Errorf("Expected suspended reason prefix, got %q", decision.Reason)
	}

	// No new alerts: rules are not re-evaluated once suspended
	if after := len(b.Alerts("user-1")); after != before {
		t.Errorf("Expected no new alerts while suspended, got %d -> %d", before, after)
	}

	// The denied event is still recorded for audit completeness
	if spend := b.CurrentSpend("user-1", ""); spend != 151 {
		t.Errorf("Expected spend 151 including denied event, got %.2f", spend)
	}
}

func TestBreaker_WindowExpiry_SpendDropsOut(t *testing.T) {
	b, clock := newTestBreaker()

	b.Record("user-1", 60, "", standardRules)
	if spend := b.WindowedSpend("user-1", "", time.Hour); spend != 60 {
		t.Fatalf("Expected windowed spend 60, got %.2f", spend)
	}

	clock.Advance(2 * time.Hour)

	if spend := b.WindowedSpend("user-1", "", time.Hour); spend != 0 {
		t.Errorf("Expected windowed spend 0 after expiry, got %.2f", spend)
	}

	// A fresh record no longer crosses the alert threshold
	b.Record("user-1", 40, "", standardRules)
	if n := len(b.Alerts("user-1")); n != 1 {
		t.Errorf("Expected only the original alert, got %d", n)
	}
}

func TestBreaker_IndependentWindows(t *testing.T) {
	b, clock := newTestBreaker()

	rules := []Rule{
		{Amount: 80, Window: time.Hour, Action: ActionAlert},
		{Amount: 100, Window: 24 * time.Hour, Action: ActionSuspend},
	}

	b.Record("user-1", 70, "", rules)
	clock.Advance(2 * time.Hour)

	// Hourly window is clear, but the daily window accumulates.
	decision := b.Record("user-1", 40, "", rules)
	if decision.Allowed {
		t.Fatal("Expected daily rule to suspend despite clear hourly window")
	}

	records := b.Alerts("user-1")
	if len(records) != 1 || records[0].Action != string(ActionSuspend) {
		t.Fatalf("Expected exactly the daily suspend crossing, got %+v", records)
	}
	if records[0].ActualSpend != 110 {
		t.Errorf("Expected daily actual spend 110, got %.2f", records[0].ActualSpend)
	}
}

// ============================================================================
// Manual Suspension Tests
// ============================================================================

func TestBreaker_ManualSuspendUnsuspend(t *testing.T) {
	b, _ := newTestBreaker()

	b.Suspend("user-1", "abuse report")
	if !b.IsSuspended("user-1", "") {
		t.Error("Expected manual suspension to take effect")
	}

	decision := b.Record("user-1", 1, "", nil)
	if decision.Allowed {
		t.Error("Expected record denied while manually suspended")
	}
	if !strings.Contains(decision.Reason, "abuse report") {
		t.Errorf("Expected reason to carry suspension reason, got %q", decision.Reason)
	}

	b.Unsuspend("user-1")
	if b.IsSuspended("user-1", "") {
		t.Error("Expected unsuspend to clear the flag")
	}
	if _, ok := b.SuspensionFor("user-1"); ok {
		t.Error("Expected stored suspension removed")
	}

	// May re-suspend afterwards
	b.Suspend("user-1", "again")
	if !b.IsSuspended("user-1", "") {
		t.Error("Expected re-suspension to work")
	}
}

func TestBreaker_Unsuspend_KeepsLedgerAndAlerts(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-1", 150, "", standardRules)
	b.Unsuspend("user-1")

	if spend := b.CurrentSpend("user-1", ""); spend != 150 {
		t.Errorf("Expected ledger history preserved, got %.2f", spend)
	}
	if n := len(b.Alerts("user-1")); n != 2 {
		t.Errorf("Expected alert history preserved, got %d records", n)
	}
}

// ============================================================================
// Override Tests
// ============================================================================

func TestBreaker_Override_MasksSuspension(t *testing.T) {
	b, _ := newTestBreaker()

	b.Suspend("org-1", "over budget")
	b.SetOverride("org-1", "admin-1", "billing dispute", time.Hour)

	if b.IsSuspended("user-1", "org-1") {
		t.Error("Expected active override to mask suspension")
	}

	// The stored flag is untouched
	s, ok := b.SuspensionFor("org-1")
	if !ok || !s.Suspended {
		t.Error("Expected underlying suspended flag to remain set")
	}
}

func TestBreaker_Override_ExpiryRevealsFlag(t *testing.T) {
	b, clock := newTestBreaker()

	b.Suspend("org-1", "over budget")
	b.SetOverride("org-1", "admin-1", "temporary relief", time.Hour)

	if b.IsSuspended("user-1", "org-1") {
		t.Fatal("Expected override active")
	}

	clock.Advance(2 * time.Hour)

	if !b.IsSuspended("user-1", "org-1") {
		t.Error("Expected expired override to reveal the stored flag")
	}

	// The record remains inspectable after expiry
	o, ok := b.OverrideFor("org-1")
	if !ok || o.AdminID != "admin-1" {
		t.Errorf("Expected expired override readable, got %+v (ok=%v)", o, ok)
	}
}

func TestBreaker_Override_Indefinite(t *testing.T) {
	b, clock := newTestBreaker()

	b.Suspend("org-1", "over budget")
	b.SetOverride("org-1", "admin-1", "permanent exemption", 0)

	clock.Advance(10000 * time.Hour)

	if b.IsSuspended("user-1", "org-1") {
		t.Error("Expected indefinite override to stay active")
	}
}

func TestBreaker_RemoveOverride_RestoresEnforcement(t *testing.T) {
	b, _ := newTestBreaker()

	b.Suspend("org-1", "over budget")
	b.SetOverride("org-1", "admin-1", "temp", 0)
	b.RemoveOverride("org-1")

	if !b.IsSuspended("user-1", "org-1") {
		t.Error("Expected enforcement restored after override removal")
	}
	if _, ok := b.OverrideFor("org-1"); ok {
		t.Error("Expected override record deleted")
	}
}

func TestBreaker_Override_DoesNotUnsuspendForRecord(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-1", 150, "", standardRules)
	b.SetOverride("user-1", "admin-1", "let them work", time.Hour)

	// With the override active the suspended short-circuit is masked,
	// so rules are evaluated again; the suspend rule is still crossed
	// and the call denied, but isSuspended stays masked.
	decision := b.Record("user-1", 1, "", standardRules)
	if decision.Allowed {
		t.Error("Expected rule crossing to deny even under override")
	}
	if b.IsSuspended("user-1", "") {
		t.Error("Expected isSuspended masked by override")
	}
}

// ============================================================================
// Alert Subscriber Tests
// ============================================================================

func TestBreaker_SubscriberPanic_DoesNotBlockSuspension(t *testing.T) {
	b, _ := newTestBreaker()

	b.OnAlert(func(scopeKey string, rec alert.Record) {
		panic("bad subscriber")
	})

	secondCalls := 0
	b.OnAlert(func(scopeKey string, rec alert.Record) {
		secondCalls++
	})

	decision := b.Record("user-1", 150, "", standardRules)
	if decision.Allowed {
		t.Error("Expected suspension to take effect despite panicking subscriber")
	}
	if !b.IsSuspended("user-1", "") {
		t.Error("Expected scope suspended")
	}
	if secondCalls != 2 {
		t.Errorf("Expected second subscriber invoked for both crossings, got %d", secondCalls)
	}
}

// ============================================================================
// End-to-End Scenario
// ============================================================================

func TestBreaker_EndToEndScenario(t *testing.T) {
	b, _ := newTestBreaker()

	var dispatched int
	b.OnAlert(func(scopeKey string, rec alert.Record) {
		dispatched++
	})

	// $60: crosses the alert rule only
	d1 := b.Record("user-1", 60, "", standardRules)
	if !d1.Allowed {
		t.Fatalf("Expected first record allowed, got %+v", d1)
	}
	if n := len(b.Alerts("user-1")); n != 1 {
		t.Fatalf("Expected 1 alert after first record, got %d", n)
	}

	// +$50 = $110: crosses the suspend rule (alert rule fires again too)
	d2 := b.Record("user-1", 50, "", standardRules)
	if d2.Allowed {
		t.Fatal("Expected second record denied")
	}
	if !b.IsSuspended("user-1", "") {
		t.Fatal("Expected scope suspended")
	}

	alertsAfterSuspend := len(b.Alerts("user-1"))

	// $1 while suspended: denied without evaluating rules
	d3 := b.Record("user-1", 1, "", standardRules)
	if d3.Allowed {
		t.Fatal("Expected third record denied")
	}
	if n := len(b.Alerts("user-1")); n != alertsAfterSuspend {
		t.Errorf("Expected no new alerts while suspended, got %d -> %d", alertsAfterSuspend, n)
	}
	if dispatched != alertsAfterSuspend {
		t.Errorf("Expected one dispatch per alert record, got %d dispatches for %d records",
			dispatched, alertsAfterSuspend)
	}
}

// ============================================================================
// Reset Tests
// ============================================================================

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker()

	b.Record("user-1", 150, "", standardRules)
	b.SetOverride("org-1", "admin-1", "x", 0)

	b.Reset()

	if b.IsSuspended("user-1", "") {
		t.Error("Expected suspensions cleared")
	}
	if spend := b.CurrentSpend("user-1", ""); spend != 0 {
		t.Errorf("Expected ledger cleared, got %.2f", spend)
	}
	if n := len(b.Alerts("user-1")); n != 0 {
		t.Errorf("Expected alert history cleared, got %d", n)
	}
	if _, ok := b.OverrideFor("org-1"); ok {
		t.Error("Expected overrides cleared")
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestBreaker_ConcurrentRecord_SameScope(t *testing.T) {
	b, _ := newTestBreaker()

	var wg sync.WaitGroup
	numGoroutines := 10
	recordsPerGoroutine := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				b.Record("shared-user", 0.01, "", nil)
			}
		}()
	}

	wg.Wait()

	expected := float64(numGoroutines*recordsPerGoroutine) * 0.01
	spend := b.CurrentSpend("shared-user", "")
	if diff := spend - expected; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected spend %.2f, got %.6f", expected, spend)
	}
}

func TestBreaker_ConcurrentRecord_SuspensionIsTerminal(t *testing.T) {
	b, _ := newTestBreaker()

	rules := []Rule{{Amount: 10, Window: time.Hour, Action: ActionSuspend}}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Record(fmt.Sprintf("user-%d", n%2), 6, "org-1", rules)
		}(i)
	}
	wg.Wait()

	if !b.IsSuspended("user-0", "org-1") {
		t.Error("Expected org scope suspended after concurrent overspend")
	}

	// Every event was recorded, including ones denied after suspension
	if spend := b.CurrentSpend("user-0", "org-1"); spend != 120 {
		t.Errorf("Expected all 20 events recorded (120), got %.2f", spend)
	}
}

// ============================================================================
// Default Instance Tests
// ============================================================================

func TestDefaultInstance(t *testing.T) {
	clock := newFakeClock()
	SetDefault(New(Config{Now: clock.Now}))
	defer SetDefault(New(Config{}))

	Record("user-1", 60, "", standardRules)
	if spend := CurrentSpend("user-1", ""); spend != 60 {
		t.Errorf("Expected default-instance spend 60, got %.2f", spend)
	}
	if n := len(Alerts("user-1")); n != 1 {
		t.Errorf("Expected 1 alert on default instance, got %d", n)
	}

	Suspend("user-1", "manual")
	if !IsSuspended("user-1", "") {
		t.Error("Expected default-instance suspension")
	}

	SetOverride("user-1", "admin-1", "relief", time.Hour)
	if IsSuspended("user-1", "") {
		t.Error("Expected override on default instance")
	}
	RemoveOverride("user-1")
	Unsuspend("user-1")

	Reset()
	if spend := CurrentSpend("user-1", ""); spend != 0 {
		t.Errorf("Expected reset default instance, got %.2f", spend)
	}
}
