package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// TestToken is the API token the stub accepts
const TestToken = "integration-token"

// Agent is an agent record served by the stub
type Agent struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

// FRSStub is a fake FRS agent API
type FRSStub struct {
	server *httptest.Server

	mu       sync.Mutex
	agents   []Agent
	webhooks []map[string]any
}

// NewFRSStub starts a fake FRS API serving agents
func NewFRSStub(agents []Agent) *FRSStub {
	s := &FRSStub{agents: agents}

	r := chi.NewRouter()
	r.Use(s.requireToken)
	r.Get("/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "ok"})
	})
	r.Get("/agents", s.listAgents)
	r.Get("/agents/{id}", s.getAgent)
	r.Post("/webhooks", s.registerWebhook)

	s.server = httptest.NewServer(r)
	return s
}

// URL returns the API base URL
func (s *FRSStub) URL() string {
	return s.server.URL
}

// Close shuts the stub down
func (s *FRSStub) Close() {
	s.server.Close()
}

// Upsert replaces the agent with the same id or appends it
func (s *FRSStub) Upsert(agent Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.agents {
		if s.agents[i].ID == agent.ID {
			s.agents[i] = agent
			return
		}
	}
	s.agents = append(s.agents, agent)
}

// Webhooks returns the registrations received so far
func (s *FRSStub) Webhooks() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.webhooks...)
}

func (*FRSStub) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Token") != TestToken {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *FRSStub) listAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = len(s.agents)
	}

	page := []Agent{}
	if offset < len(s.agents) {
		end := min(offset+limit, len(s.agents))
		page = s.agents[offset:end]
	}
	writeJSON(w, map[string]any{"agents": page, "total_count": len(s.agents)})
}

func (s *FRSStub) getAgent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	for _, a := range s.agents {
		if strconv.Itoa(a.ID) == id {
			writeJSON(w, map[string]any{"agent": a})
			return
		}
	}
	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}

func (s *FRSStub) registerWebhook(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.webhooks = append(s.webhooks, body)
	id := len(s.webhooks)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"webhook_id": id,
		"secret":     StubWebhookSecret(id),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// StubWebhookSecret is the secret issued for the n-th registration
func StubWebhookSecret(n int) string {
	return "stub-secret-" + strconv.Itoa(n)
}

// LoanOfficers returns n loan officer agents with predictable emails
func LoanOfficers(n int) []Agent {
	agents := make([]Agent, 0, n)
	for i := 1; i <= n; i++ {
		agents = append(agents, Agent{
			ID:        100 + i,
			Email:     "officer" + strconv.Itoa(i) + "@example.com",
			FirstName: "Officer",
			LastName:  strings.Repeat("I", i),
			Role:      "loan_officer",
		})
	}
	return agents
}
