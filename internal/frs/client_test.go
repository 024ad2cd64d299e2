package frs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/httpclient"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func newClient(server *httptest.Server) frs.Client {
	return frs.NewClient(httpclient.NewDefaultClient(5*time.Second),
		frs.WithCredentials(server.URL, "test-token"),
		frs.WithTimeouts(2*time.Second, 3*time.Second),
	)
}

func TestClient_NotConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		token   string
	}{
		{name: "missing token", baseURL: "http://example.com"},
		{name: "missing base url", token: "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := frs.NewClient(httpclient.NewDefaultClient(time.Second), frs.WithCredentials(tt.baseURL, tt.token))

			require.ErrorIs(t, client.TestConnection(context.Background()), frs.ErrNotConfigured)
			_, err := client.ListAgents(context.Background(), 0, 10)
			require.ErrorIs(t, err, frs.ErrNotConfigured)
			_, err = client.RegisterWebhook(context.Background(), frs.WebhookRegistration{})
			require.ErrorIs(t, err, frs.ErrNotConfigured)
		})
	}
}

func TestClient_TestConnection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "unauthorized", status: http.StatusUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "created is not healthy for reads", status: http.StatusCreated, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath, gotToken string
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotToken = r.Header.Get(frs.TokenHeader)
				w.WriteHeader(tt.status)
			})

			err := newClient(server).TestConnection(context.Background())

			assert.Equal(t, "/dashboard", gotPath)
			assert.Equal(t, "test-token", gotToken)
			if tt.wantStatus == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, httpclient.StatusCode(err))
		})
	}
}

func TestClient_CountAgents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    int
		wantErr error
	}{
		{name: "total_count present", body: `{"agents":[{"id":1}],"total_count":137}`, want: 137},
		{name: "falls back to agents length", body: `{"agents":[{"id":1},{"id":2}]}`, want: 2},
		{name: "null total_count falls back", body: `{"agents":[{"id":1}],"total_count":null}`, want: 1},
		{name: "empty body object", body: `{}`, want: 0},
		{name: "invalid json", body: `not json`, wantErr: frs.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotQuery string
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				_, _ = w.Write([]byte(tt.body))
			})

			count, err := newClient(server).CountAgents(context.Background())

			assert.Equal(t, "role=loan_officer&limit=1", gotQuery)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestClient_ListAgents(t *testing.T) {
	t.Parallel()

	t.Run("decodes page and counts invalid records", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"agents":[
				{"id":7,"email":"jane@x.com","first_name":"Jane","specialties_lo":"FHA, VA","languages":["English","Spanish"]},
				{"id":"8","email":42},
				{"id":"9","uuid":"u-9","email":"bob@x.com"}
			],"total_count":3}`))
		})

		page, err := newClient(server).ListAgents(context.Background(), 20, 10)
		require.NoError(t, err)

		assert.Equal(t, "role=loan_officer&limit=10&offset=20", gotQuery)
		require.Len(t, page.Agents, 2)
		assert.Equal(t, 1, page.Invalid)
		assert.Equal(t, frs.ID("7"), page.Agents[0].ID)
		assert.Equal(t, frs.StringList{"FHA", " VA"}, page.Agents[0].Specialties)
		assert.Equal(t, frs.StringList{"English", "Spanish"}, page.Agents[0].Languages)
		assert.Equal(t, "u-9", page.Agents[1].UUID)
	})

	t.Run("missing agents key is invalid", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})

		_, err := newClient(server).ListAgents(context.Background(), 0, 10)
		require.ErrorIs(t, err, frs.ErrInvalidResponse)
	})

	t.Run("non-200 is an API error", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := newClient(server).ListAgents(context.Background(), 0, 10)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, httpclient.StatusCode(err))
	})
}

func TestClient_GetAgent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		want    *frs.Agent
	}{
		{
			name:   "agent envelope",
			status: http.StatusOK,
			body:   `{"agent":{"id":42,"email":"a@b.c","role":"loan_officer"}}`,
			want:   &frs.Agent{ID: "42", Email: "a@b.c", Role: frs.RoleLoanOfficer},
		},
		{name: "missing envelope", status: http.StatusOK, body: `{"id":42}`, wantErr: true},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath string
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			agent, err := newClient(server).GetAgent(context.Background(), "42")

			assert.Equal(t, "/agents/42", gotPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, agent)
			assert.True(t, agent.IsLoanOfficer())
		})
	}
}

func TestClient_RegisterWebhook(t *testing.T) {
	t.Parallel()

	reg := frs.WebhookRegistration{
		Name:   "Portal - Loan Officer Sync (portal.example.com)",
		URL:    "https://portal.example.com/webhook",
		Events: []string{"agent.created", "agent.updated"},
		Active: true,
	}

	tests := []struct {
		name       string
		status     int
		body       string
		want       *frs.WebhookCredentials
		errContain string
	}{
		{
			name:   "created with numeric id",
			status: http.StatusCreated,
			body:   `{"webhook_id":12,"secret":"s3cr3t"}`,
			want:   &frs.WebhookCredentials{WebhookID: "12", Secret: "s3cr3t"},
		},
		{
			name:   "ok without secret",
			status: http.StatusOK,
			body:   `{"webhook_id":"wh_1"}`,
			want:   &frs.WebhookCredentials{WebhookID: "wh_1"},
		},
		{
			name:       "remote error message surfaced",
			status:     http.StatusUnprocessableEntity,
			body:       `{"error":"url already registered"}`,
			errContain: "url already registered",
		},
		{
			name:       "error without body falls back to status",
			status:     http.StatusInternalServerError,
			body:       ``,
			errContain: "HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got frs.WebhookRegistration
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/webhooks", r.URL.Path)
				assert.Equal(t, "test-token", r.Header.Get(frs.TokenHeader))
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			creds, err := newClient(server).RegisterWebhook(context.Background(), reg)

			assert.Equal(t, reg, got)
			if tt.errContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, creds)
		})
	}
}
