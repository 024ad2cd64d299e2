package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"

	"github.com/frsworks/frs-sync/internal/app"
	"github.com/frsworks/frs-sync/internal/config"
	"github.com/frsworks/frs-sync/internal/webhook"
)

// TestWebhookSecret is the fallback secret written to the test configuration
const TestWebhookSecret = "integration-webhook-secret"

// ServerTestHelper manages the sync server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	dataDir    string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *app.SyncApp
}

// NewServerTestHelper creates a helper for a server configured by configPath
func NewServerTestHelper(ctx context.Context, configPath, dataDir string) (*ServerTestHelper, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		dataDir:    dataDir,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// StartServer builds and starts the sync server in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	syncApp, err := app.NewSyncApp(s.ctx,
		app.WithConfig(cfg),
		app.WithAddress(s.address),
		app.WithDataDirectory(s.dataDir),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = syncApp

	go func() {
		if err := syncApp.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()
	return nil
}

// StopServer gracefully stops the sync server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to answer /readiness
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Get makes a GET request and decodes the JSON response into a map
func (s *ServerTestHelper) Get(path string) (int, map[string]any) {
	resp, err := s.httpClient.Get(s.baseURL + path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return decode(resp)
}

// PostJSON posts body as JSON and decodes the JSON response into a map
func (s *ServerTestHelper) PostJSON(path string, body any) (int, map[string]any) {
	payload, err := json.Marshal(body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	resp, err := s.httpClient.Post(s.baseURL+path, "application/json", bytes.NewReader(payload))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return decode(resp)
}

// PostWebhook delivers an event signed with secret to path
func (s *ServerTestHelper) PostWebhook(path string, event map[string]any, secret string) (int, map[string]any) {
	payload, err := json.Marshal(event)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(webhook.SignatureHeader, webhook.Sign(payload, secret))
	}

	resp, err := s.httpClient.Do(req)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return decode(resp)
}

func decode(resp *http.Response) (int, map[string]any) {
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	out := map[string]any{}
	if len(data) > 0 {
		gomega.Expect(json.Unmarshal(data, &out)).To(gomega.Succeed(), string(data))
	}
	return resp.StatusCode, out
}

// WriteConfigYAML writes a configuration pointing at the stub API
func WriteConfigYAML(dir, apiURL string) string {
	secretFile := filepath.Join(dir, "webhook-secret")
	gomega.Expect(os.WriteFile(secretFile, []byte(TestWebhookSecret), 0600)).To(gomega.Succeed())
	tokenFile := filepath.Join(dir, "api-token")
	gomega.Expect(os.WriteFile(tokenFile, []byte(TestToken), 0600)).To(gomega.Succeed())

	content := fmt.Sprintf(`siteName: Integration Portal

api:
  baseURL: %s
  tokenFile: %s
  requestTimeout: 5s
  batchTimeout: 10s

sync:
  autoSync: false
  resyncDelay: 1s

webhook:
  publicURL: http://portal.example.com
  secretFile: %s

auth:
  disabled: true
`, apiURL, tokenFile, secretFile)

	configPath := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(configPath, []byte(content), 0600)).To(gomega.Succeed())
	return configPath
}
