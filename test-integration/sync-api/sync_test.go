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

var _ = Describe("Sync API", Label("sync"), func() {
	var (
		tempDir      string
		stub         *helpers.FRSStub
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("sync-test-")
		dataDir := filepath.Join(tempDir, "data")
		Expect(os.MkdirAll(dataDir, 0750)).To(Succeed())

		stub = helpers.NewFRSStub(helpers.LoanOfficers(3))
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

	It("reports an empty directory before the first sync", func() {
		status, body := serverHelper.Get("/api/v1/status")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["total_people"]).To(BeEquivalentTo(0))
		Expect(body["last_sync"]).To(Equal("Never"))
		Expect(body["auto_sync"]).To(BeFalse())
	})

	It("tests the connection to the FRS API", func() {
		status, body := serverHelper.PostJSON("/api/v1/connection/test", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["success"]).To(BeTrue())
	})

	It("syncs every loan officer in one full sync", func() {
		status, body := serverHelper.PostJSON("/api/v1/sync/full", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["total"]).To(BeEquivalentTo(3))
		Expect(body["synced"]).To(BeEquivalentTo(3))
		Expect(body["errors"]).To(BeEquivalentTo(0))

		status, body = serverHelper.Get("/api/v1/status")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["total_people"]).To(BeEquivalentTo(3))
		Expect(body["last_sync"]).NotTo(Equal("Never"))
	})

	It("syncs incrementally in batches until no pages remain", func() {
		status, body := serverHelper.PostJSON("/api/v1/sync/batch", map[string]any{
			"is_initial": true,
			"batch_size": 2,
		})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["total"]).To(BeEquivalentTo(3))
		Expect(body["has_more"]).To(BeTrue())

		sessionID := body["session_id"]
		Expect(sessionID).NotTo(BeEmpty())

		status, body = serverHelper.PostJSON("/api/v1/sync/batch", map[string]any{
			"session_id": sessionID,
			"offset":     body["next_offset"],
			"batch_size": 2,
		})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["has_more"]).To(BeFalse())
		Expect(body["progress"]).To(BeEquivalentTo(100))

		_, body = serverHelper.Get("/api/v1/status")
		Expect(body["total_people"]).To(BeEquivalentTo(3))

		status, _ = serverHelper.PostJSON("/api/v1/sync/batch", map[string]any{
			"session_id": sessionID,
			"offset":     2,
			"batch_size": 2,
		})
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("rejects a batch that continues an unknown session", func() {
		status, _ := serverHelper.PostJSON("/api/v1/sync/batch", map[string]any{
			"session_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			"offset":     10,
		})
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("links a registering user to the synced person with the same email", func() {
		status, _ := serverHelper.PostJSON("/api/v1/sync/full", nil)
		Expect(status).To(Equal(http.StatusOK))

		status, body := serverHelper.PostJSON("/api/v1/users/registered", map[string]any{
			"id":    "42",
			"email": "OFFICER2@example.com",
		})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["linked"]).To(BeTrue())
		personID, ok := body["person_id"].(string)
		Expect(ok).To(BeTrue())

		status, body = serverHelper.Get("/api/v1/persons/" + personID)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["synced"]).To(BeTrue())
		Expect(body["agent_id"]).To(Equal("102"))
		Expect(body["linked_user"]).To(HaveKeyWithValue("id", "42"))

		_, body = serverHelper.Get("/api/v1/status")
		Expect(body["linked_users"]).To(BeEquivalentTo(1))
	})

	It("registers the webhook and stores its id", func() {
		status, body := serverHelper.PostJSON("/api/v1/webhook/setup", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["webhook_id"]).To(Equal("1"))
		Expect(body["url"]).To(Equal("https://portal.example.com/webhook"))

		Expect(stub.Webhooks()).To(HaveLen(1))
		Expect(stub.Webhooks()[0]["events"]).To(ConsistOf("agent.created", "agent.updated"))

		_, body = serverHelper.Get("/api/v1/status")
		Expect(body["webhook_id"]).To(Equal("1"))
		Expect(body["webhook_secret_configured"]).To(BeTrue())
	})
})
