package handlers_test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type logEntry struct {
	Level  string                 `json:"level"`
	Action string                 `json:"action"`
	Fields map[string]interface{} `json:"fields"`
}

// capture logs by temporarily replacing the standard logger output
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func TestTransitionLogCarriesFromAndToStates(t *testing.T) {
	app := newMarketApp(t)
	buyer := loginSID(t, app, "buyer@bloxmarket.test")

	code, body := doJSON(t, app, "POST", "/api/v1/transactions", buyer, `{"listingId":"acc_seed_godly"}`)
	if code != http.StatusCreated {
		t.Fatalf("initiate: got %d (%v)", code, body)
	}
	txnID, _ := body["id"].(string)

	entries := captureLogs(t, func() {
		if code, body := doJSON(t, app, "POST", "/api/v1/transactions/"+txnID+"/capture", buyer, ""); code != http.StatusOK {
			t.Fatalf("capture: got %d (%v)", code, body)
		}
	})

	found := false
	for _, e := range entries {
		if e.Action != "txn.transition" {
			continue
		}
		found = true
		if e.Fields["from"] != "pending" || e.Fields["to"] != "escrow_held" {
			t.Fatalf("transition fields: %v", e.Fields)
		}
	}
	if !found {
		t.Fatal("no txn.transition log entry emitted")
	}
}
