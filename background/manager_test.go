package background

import (
	"testing"
	"time"

	"github.com/RichardKnop/machinery/v1"
	machineryconf "github.com/RichardKnop/machinery/v1/config"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/quarantaenehelden/notification-api/external/mocks"
	"github.com/quarantaenehelden/notification-api/schema"
)

func eagerTaskServer(t *testing.T) *machinery.Server {
	server, err := machinery.NewServer(&machineryconf.Config{
		Broker:        "eager",
		ResultBackend: "eager",
	})
	if err != nil {
		t.Fatalf("create eager task server with error: %s", err)
	}
	return server
}

// An enqueued sweep task must run the whole pipeline through the task queue:
// registration, publish and execution all on the broker the worker uses.
func TestEnqueuedSweepRunsPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	ledger := newMemoryLedger()

	core := &stubCore{
		dueRequests: []schema.HelpRequest{
			{ID: "req-1", PostalCode: "12345", Timestamp: time.Now().Add(-30 * time.Minute).Unix()},
		},
		offers: []schema.HelpOffer{
			{ID: "offer-1", UID: "uid-1", PostalCode: "12344"},
			{ID: "offer-2", UID: "uid-2", PostalCode: "12346"},
		},
		email: "helper@example.org",
	}

	mailer.EXPECT().Enabled().Return(true)
	mailer.EXPECT().Send(gomock.Any()).Return(nil).Times(2)

	m := newTestManager(core, mailer, ledger, testConfig())
	m.taskServer = eagerTaskServer(t)

	assert.NoError(t, m.RegisterTasks())
	assert.NoError(t, m.enqueueSweep())

	assert.Len(t, ledger.recorded["req-1"], 2)
}
