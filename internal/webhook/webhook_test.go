package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/frsworks/frs-sync/internal/frs"
	frsmocks "github.com/frsworks/frs-sync/internal/frs/mocks"
	mappermocks "github.com/frsworks/frs-sync/internal/mapper/mocks"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/person/inmemory"
	"github.com/frsworks/frs-sync/internal/settings"
	"github.com/frsworks/frs-sync/internal/webhook/mocks"
)

const testSecret = "s3cr3t"

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type receiverFixture struct {
	receiver  *Receiver
	client    *frsmocks.MockClient
	mapper    *mappermocks.MockMapper
	scheduler *mocks.MockScheduler
	people    person.Store
}

func newReceiverFixture(t *testing.T, stored settings.Settings, opts ...Option) *receiverFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &receiverFixture{
		client:    frsmocks.NewMockClient(ctrl),
		mapper:    mappermocks.NewMockMapper(ctrl),
		scheduler: mocks.NewMockScheduler(ctrl),
		people:    inmemory.New(),
	}

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	r, err := NewReceiver(
		settings.NewFileStore(t.TempDir(), stored),
		f.client, f.mapper, f.people, f.scheduler, opts...,
	)
	require.NoError(t, err)
	f.receiver = r
	return f
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"webhook.test","data":{},"timestamp":"2026-03-14T09:26:53Z"}`)
	valid := Sign(body, testSecret)
	hexSig := strings.TrimPrefix(valid, "sha256=")

	mutatedBody := append([]byte(nil), body...)
	mutatedBody[10] ^= 0x01

	mutatedSig := []byte(hexSig)
	if mutatedSig[0] == 'a' {
		mutatedSig[0] = 'b'
	} else {
		mutatedSig[0] = 'a'
	}

	caseFlipped := []byte(hexSig)
	if i := strings.IndexAny(hexSig, "abcdef"); i >= 0 {
		caseFlipped[i] -= 'a' - 'A'
	}

	tests := []struct {
		name      string
		body      []byte
		signature string
		want      bool
	}{
		{name: "prefixed", body: body, signature: valid, want: true},
		{name: "uppercase prefix", body: body, signature: "SHA256=" + hexSig, want: true},
		{name: "bare hex", body: body, signature: hexSig, want: true},
		{name: "uppercase hex", body: body, signature: strings.ToUpper(hexSig), want: false},
		{name: "mutated body", body: mutatedBody, signature: valid, want: false},
		{name: "mutated signature", body: body, signature: string(mutatedSig), want: false},
		{name: "single hex letter case flipped", body: body, signature: string(caseFlipped), want: false},
		{name: "wrong secret", body: body, signature: Sign(body, "other"), want: false},
		{name: "empty signature", body: body, signature: "", want: false},
		{name: "prefix only", body: body, signature: "sha256=", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, VerifySignature(tt.body, tt.signature, testSecret))
		})
	}
}

func TestHandle_Signature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"webhook.test","data":{},"timestamp":"2026-03-14T09:26:53Z"}`)

	tests := []struct {
		name      string
		stored    settings.Settings
		opts      []Option
		signature string
		wantErr   error
	}{
		{
			name:      "stored secret accepts valid signature",
			stored:    settings.Settings{WebhookSecret: testSecret},
			signature: Sign(body, testSecret),
		},
		{
			name:      "stored secret rejects missing signature",
			stored:    settings.Settings{WebhookSecret: testSecret},
			signature: "",
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "stored secret wins over fallback",
			stored:    settings.Settings{WebhookSecret: testSecret},
			opts:      []Option{WithFallbackSecret("fallback")},
			signature: Sign(body, "fallback"),
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "fallback secret used when none stored",
			opts:      []Option{WithFallbackSecret("fallback")},
			signature: Sign(body, "fallback"),
		},
		{
			name:      "no secret skips verification",
			signature: "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newReceiverFixture(t, tt.stored, tt.opts...)
			ack, err := f.receiver.Handle(context.Background(), body, tt.signature)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ack)
				return
			}
			require.NoError(t, err)
			assert.True(t, ack.Success)
		})
	}
}

func TestHandle_InvalidPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `event=agent.created`},
		{name: "missing event", body: `{"data":{"id":1,"role":"loan_officer"},"timestamp":"t"}`},
		{name: "missing data", body: `{"event":"agent.created","timestamp":"t"}`},
		{name: "missing timestamp", body: `{"event":"agent.created","data":{"id":1,"role":"loan_officer"}}`},
		{name: "null data", body: `{"event":"agent.created","data":null,"timestamp":"t"}`},
		{name: "null timestamp", body: `{"event":"agent.created","data":{},"timestamp":null}`},
		{name: "array body", body: `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// No expectations on the mocks: dispatch must not be reached
			f := newReceiverFixture(t, settings.Settings{})
			_, err := f.receiver.Handle(context.Background(), []byte(tt.body), "")
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestHandle_PresentFieldsOfAnyTypeAreAccepted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		event string
	}{
		{name: "empty event", body: `{"event":"","data":{},"timestamp":"t"}`, event: ""},
		{name: "array data", body: `{"event":"agent.created","data":[],"timestamp":"t"}`, event: EventAgentCreated},
		{name: "boolean timestamp", body: `{"event":"webhook.test","data":{},"timestamp":true}`, event: EventTest},
		{name: "object timestamp", body: `{"event":"webhook.test","data":{},"timestamp":{"unix":1}}`, event: EventTest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// No expectations on the mocks: every case is acked and ignored
			f := newReceiverFixture(t, settings.Settings{})
			ack, err := f.receiver.Handle(context.Background(), []byte(tt.body), "")
			require.NoError(t, err)
			assert.True(t, ack.Success)
			assert.Equal(t, tt.event, ack.Event)
		})
	}
}

func TestHandle_AgentUpdated(t *testing.T) {
	t.Parallel()

	f := newReceiverFixture(t, settings.Settings{})
	agent := &frs.Agent{ID: "42", Email: "jane@example.com", Role: frs.RoleLoanOfficer}

	f.client.EXPECT().GetAgent(gomock.Any(), "42").Return(agent, nil)
	f.mapper.EXPECT().SyncAgent(gomock.Any(), agent).Return(nil)

	body := []byte(`{"event":"agent.updated","data":{"agent_id":42,"id":7,"role":"loan_officer","email":"jane@example.com"},` +
		`"timestamp":"2026-03-14T09:26:53Z","webhook_id":"wh_1"}`)
	ack, err := f.receiver.Handle(context.Background(), body, "")
	require.NoError(t, err)

	assert.True(t, ack.Success)
	assert.Equal(t, AckMessage, ack.Message)
	assert.Equal(t, EventAgentUpdated, ack.Event)
	assert.Equal(t, "2026-03-14 09:26:53", ack.Timestamp)
	require.NotNil(t, ack.WebhookID)
	assert.Equal(t, "wh_1", *ack.WebhookID)
}

func TestHandle_AgentCreatedFallsBackToID(t *testing.T) {
	t.Parallel()

	f := newReceiverFixture(t, settings.Settings{})
	agent := &frs.Agent{ID: "7", Email: "lo@example.com"}

	f.client.EXPECT().GetAgent(gomock.Any(), "7").Return(agent, nil)
	f.mapper.EXPECT().SyncAgent(gomock.Any(), agent).Return(nil)

	body := []byte(`{"event":"agent.created","data":{"id":7,"role":"loan_officer"},"timestamp":1710408413}`)
	ack, err := f.receiver.Handle(context.Background(), body, "")
	require.NoError(t, err)
	assert.Nil(t, ack.WebhookID)
}

func TestHandle_DispatchFailureStillAcknowledged(t *testing.T) {
	t.Parallel()

	f := newReceiverFixture(t, settings.Settings{})
	f.client.EXPECT().GetAgent(gomock.Any(), "7").Return(nil, errors.New("timeout"))

	body := []byte(`{"event":"agent.updated","data":{"id":7,"role":"loan_officer"},"timestamp":"t"}`)
	ack, err := f.receiver.Handle(context.Background(), body, "")
	require.NoError(t, err)
	assert.True(t, ack.Success)
}

func TestHandle_NonLoanOfficerIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReceiverFixture(t, settings.Settings{})

	p := &person.Person{
		Title:   "Realtor",
		Status:  person.StatusPublish,
		AgentID: "9",
		Fields:  person.Fields{Email: "realtor@example.com"},
	}
	require.NoError(t, f.people.Save(ctx, p))

	for _, event := range []string{EventAgentCreated, EventAgentUpdated, EventAgentDeleted} {
		body := []byte(`{"event":"` + event + `","data":{"id":9,"role":"realtor","email":"realtor@example.com"},"timestamp":"t"}`)
		_, err := f.receiver.Handle(ctx, body, "")
		require.NoError(t, err)
	}

	got, err := f.people.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, person.StatusPublish, got.Status)
	assert.Nil(t, got.DeletedAt)
}

func TestHandle_AgentDeleted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "by agent id", data: `{"agent_id":"9","role":"loan_officer"}`},
		{name: "by email", data: `{"id":"unknown","role":"loan_officer","email":"lo@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := newReceiverFixture(t, settings.Settings{})

			p := &person.Person{
				Title:   "Loan Officer",
				Status:  person.StatusPublish,
				AgentID: "9",
				Fields:  person.Fields{Email: "lo@example.com"},
			}
			require.NoError(t, f.people.Save(ctx, p))

			body := []byte(`{"event":"agent.deleted","data":` + tt.data + `,"timestamp":"t"}`)
			_, err := f.receiver.Handle(ctx, body, "")
			require.NoError(t, err)

			got, err := f.people.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, person.StatusDraft, got.Status)
			require.NotNil(t, got.DeletedAt)
			assert.True(t, got.DeletedAt.Equal(fixedNow))
		})
	}
}

func TestHandle_AgentDeletedUnknownPerson(t *testing.T) {
	t.Parallel()

	f := newReceiverFixture(t, settings.Settings{})
	body := []byte(`{"event":"agent.deleted","data":{"id":"404","role":"loan_officer"},"timestamp":"t"}`)
	ack, err := f.receiver.Handle(context.Background(), body, "")
	require.NoError(t, err)
	assert.True(t, ack.Success)
}

func TestHandle_BulkEventsScheduleResync(t *testing.T) {
	t.Parallel()

	for _, event := range []string{EventBulkImportCompleted, EventBulkUpdateCompleted} {
		t.Run(event, func(t *testing.T) {
			t.Parallel()

			f := newReceiverFixture(t, settings.Settings{}, WithResyncDelay(90*time.Second))
			f.scheduler.EXPECT().ScheduleResync(90*time.Second).Return(true, nil)

			body := []byte(`{"event":"` + event + `","data":{"count":250},"timestamp":"t"}`)
			ack, err := f.receiver.Handle(context.Background(), body, "")
			require.NoError(t, err)
			assert.Equal(t, event, ack.Event)
		})
	}
}

func TestHandle_TestAndUnknownEvents(t *testing.T) {
	t.Parallel()

	for _, event := range []string{EventTest, "agent.promoted"} {
		t.Run(event, func(t *testing.T) {
			t.Parallel()

			f := newReceiverFixture(t, settings.Settings{})
			body := []byte(`{"event":"` + event + `","data":{"id":1,"role":"loan_officer"},"timestamp":"t"}`)
			ack, err := f.receiver.Handle(context.Background(), body, "")
			require.NoError(t, err)
			assert.Equal(t, event, ack.Event)
		})
	}
}
