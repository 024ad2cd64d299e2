package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frsworks/frs-sync/test-integration/sync-api/helpers"
)

var _ = Describe("Webhook Receiver", Label("webhook"), func() {
	var (
		tempDir      string
		stub         *helpers.FRSStub
		serverHelper *helpers.ServerTestHelper
	)

	event := func(name string, data map[string]any) map[string]any {
		return map[string]any{
			"event":      name,
			"data":       data,
			"timestamp":  time.Now().Unix(),
			"webhook_id": "7",
		}
	}

	BeforeEach(func() {
		tempDir = createTempDir("webhook-test-")
		dataDir := filepath.Join(tempDir, "data")
		Expect(os.MkdirAll(dataDir, 0750)).To(Succeed())

		stub = helpers.NewFRSStub(helpers.LoanOfficers(1))
		configFile := helpers.WriteConfigYAML(tempDir, stub.URL())

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile, dataDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		stub.Close()
		cleanupTempDir(tempDir)
	})

	It("creates a person when an agent is created", func() {
		stub.Upsert(helpers.Agent{ID: 500, Email: "new@example.com", FirstName: "New", LastName: "Officer", Role: "loan_officer"})

		status, body := serverHelper.PostWebhook("/webhook",
			event("agent.created", map[string]any{"agent_id": 500, "role": "loan_officer"}),
			helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["success"]).To(BeTrue())
		Expect(body["event"]).To(Equal("agent.created"))
		Expect(body["webhook_id"]).To(Equal("7"))

		_, body = serverHelper.Get("/api/v1/status")
		Expect(body["total_people"]).To(BeEquivalentTo(1))
	})

	It("accepts deliveries on the legacy receiver path", func() {
		status, _ := serverHelper.PostWebhook("/wp-json/frs/v1/webhook",
			event("webhook.test", map[string]any{}), helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("ignores agents that are not loan officers", func() {
		status, _ := serverHelper.PostWebhook("/webhook",
			event("agent.created", map[string]any{"agent_id": 101, "role": "realtor"}),
			helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusOK))

		_, body := serverHelper.Get("/api/v1/status")
		Expect(body["total_people"]).To(BeEquivalentTo(0))
	})

	It("soft deletes the person of a deleted agent", func() {
		status, _ := serverHelper.PostJSON("/api/v1/sync/full", nil)
		Expect(status).To(Equal(http.StatusOK))

		status, _ = serverHelper.PostWebhook("/webhook",
			event("agent.deleted", map[string]any{"agent_id": 101, "role": "loan_officer"}),
			helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusOK))

		_, body := serverHelper.Get("/api/v1/status")
		Expect(body["total_people"]).To(BeEquivalentTo(0))
	})

	It("runs a deferred full sync after a bulk import", func() {
		status, _ := serverHelper.PostWebhook("/webhook",
			event("bulk.import.completed", map[string]any{}), helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusOK))

		Eventually(func() any {
			_, body := serverHelper.Get("/api/v1/status")
			return body["total_people"]
		}, 10*time.Second, 200*time.Millisecond).Should(BeEquivalentTo(1))
	})

	It("rejects deliveries with a bad signature", func() {
		status, body := serverHelper.PostWebhook("/webhook",
			event("agent.created", map[string]any{"agent_id": 101, "role": "loan_officer"}),
			"wrong-secret")
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["success"]).To(BeFalse())
	})

	It("rejects deliveries missing required fields", func() {
		status, _ := serverHelper.PostWebhook("/webhook",
			map[string]any{"event": "agent.created"}, helpers.TestWebhookSecret)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
})
