package background

import (
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/quarantaenehelden/notification-api/external/mocks"
	"github.com/quarantaenehelden/notification-api/external/sendgrid"
	"github.com/quarantaenehelden/notification-api/match"
	"github.com/quarantaenehelden/notification-api/schema"
	"github.com/quarantaenehelden/notification-api/store"
)

type memoryLedger struct {
	sync.Mutex
	recorded map[string][]string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{recorded: map[string][]string{}}
}

func (l *memoryLedger) RecordNotification(requestID, offerUID string) error {
	l.Lock()
	defer l.Unlock()
	l.recorded[requestID] = append(l.recorded[requestID], offerUID)
	return nil
}

func testConfig() Config {
	return Config{
		SweepCandidateCap:     30,
		BroadcastCandidateCap: 15,
		MailFrom:              "hilfe@quarantaenehelden.org",
		MailFromName:          "QuarantäneHelden",
		SiteURL:               "https://www.quarantaenehelden.org",
	}
}

func candidates(uids ...string) []match.Candidate {
	cands := make([]match.Candidate, 0, len(uids))
	for _, uid := range uids {
		cands = append(cands, match.Candidate{UID: uid, PostalCode: "12345"})
	}
	return cands
}

// stubCore fakes the slice of the store facade the worker tasks touch.
// Unstubbed methods come from the embedded nil interface and must not be
// called.
type stubCore struct {
	store.HeldenCore

	dueRequests []schema.HelpRequest
	offers      []schema.HelpOffer

	offer      *schema.HelpOffer
	request    *schema.HelpRequest
	requestErr error
	email      string
	emailErr   error
}

func (s *stubCore) ListUnnotifiedRequests(olderThan int64, limit int64) ([]schema.HelpRequest, error) {
	return s.dueRequests, nil
}

func (s *stubCore) FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error) {
	return s.offers, nil
}

func (s *stubCore) GetHelpOffer(offerID string) (*schema.HelpOffer, error) {
	if s.offer == nil {
		return nil, store.ErrOfferNotExist
	}
	return s.offer, nil
}

func (s *stubCore) GetHelpRequest(requestID string) (*schema.HelpRequest, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return s.request, nil
}

func (s *stubCore) GetAccountEmail(uid string) (string, error) {
	return s.email, s.emailErr
}

func newTestManager(core store.HeldenCore, mailer sendgrid.Mailer, ledger store.NotificationLedger, conf Config) *BackgroundManager {
	return &BackgroundManager{
		store:      core,
		mailer:     mailer,
		strategy:   match.NewPostalCodeRangeStrategy(core),
		dispatcher: NewDispatcher(mailer, core, ledger, conf),
		conf:       conf,
	}
}

func TestDispatchAllIsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	identity := mocks.NewMockIdentity(ctrl)
	ledger := newMemoryLedger()

	identity.EXPECT().GetAccountEmail("uid-0").Return("a@example.org", nil)
	identity.EXPECT().GetAccountEmail("uid-1").Return("", store.ErrAccountNotFound)
	identity.EXPECT().GetAccountEmail("uid-2").Return("c@example.org", nil)
	mailer.EXPECT().Send(gomock.Any()).Return(nil).Times(2)

	d := NewDispatcher(mailer, identity, ledger, testConfig())
	request := &schema.HelpRequest{ID: "req-1", Request: "Einkaufen", PostalCode: "12345"}

	outcomes := d.DispatchAll(request, candidates("uid-0", "uid-1", "uid-2"), true)
	assert.Len(t, outcomes, 3)

	sent := 0
	failed := 0
	for _, o := range outcomes {
		if o.Sent() {
			sent++
		} else {
			failed++
			assert.Equal(t, "uid-1", o.Candidate.UID)
		}
	}
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	assert.Len(t, ledger.recorded["req-1"], 2)
}

func TestDispatchAllKillSwitch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	identity := mocks.NewMockIdentity(ctrl)
	ledger := newMemoryLedger()

	// no credentials: nothing is resolved, sent or recorded
	d := NewDispatcher(mailer, identity, ledger, testConfig())
	request := &schema.HelpRequest{ID: "req-1", Request: "Einkaufen"}

	outcomes := d.DispatchAll(request, candidates("uid-0", "uid-1"), false)
	assert.Empty(t, outcomes)
	assert.Empty(t, ledger.recorded)
}

// The kill-switch belongs to the sweep tick: one Enabled call covers every
// request of the batch.
func TestSweepChecksDeliveryOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	ledger := newMemoryLedger()

	core := &stubCore{
		dueRequests: []schema.HelpRequest{
			{ID: "req-1", PostalCode: "12345"},
			{ID: "req-2", PostalCode: "12347"},
		},
		offers: []schema.HelpOffer{
			{ID: "offer-1", UID: "uid-1", PostalCode: "12344"},
			{ID: "offer-2", UID: "uid-2", PostalCode: "12346"},
		},
	}

	mailer.EXPECT().Enabled().Return(false)

	conf := testConfig()
	m := newTestManager(core, mailer, ledger, conf)

	assert.NoError(t, m.SweepNotifications())
	assert.Empty(t, ledger.recorded)
}

func TestDispatchAllSkipsAlreadyNotified(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	identity := mocks.NewMockIdentity(ctrl)
	ledger := newMemoryLedger()

	identity.EXPECT().GetAccountEmail("uid-1").Return("b@example.org", nil)
	mailer.EXPECT().Send(gomock.Any()).Return(nil)

	d := NewDispatcher(mailer, identity, ledger, testConfig())
	request := &schema.HelpRequest{
		ID:                   "req-1",
		Request:              "Einkaufen",
		NotificationReceiver: []string{"uid-0"},
	}

	outcomes := d.DispatchAll(request, candidates("uid-0", "uid-1"), true)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, "uid-1", outcomes[0].Candidate.UID)
	assert.Equal(t, []string{"uid-1"}, ledger.recorded["req-1"])
}

func TestDispatchMailCarriesDeepLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mailer := mocks.NewMockMailer(ctrl)
	identity := mocks.NewMockIdentity(ctrl)
	ledger := newMemoryLedger()

	identity.EXPECT().GetAccountEmail("uid-0").Return("a@example.org", nil)
	mailer.EXPECT().Send(mailWithLink("https://www.quarantaenehelden.org/#/offer-help/req-1")).Return(nil)

	d := NewDispatcher(mailer, identity, ledger, testConfig())
	request := &schema.HelpRequest{ID: "req-1", Request: "Einkaufen", Location: "Berlin"}

	outcomes := d.DispatchAll(request, candidates("uid-0"), true)
	assert.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Sent())
}

type mailLinkMatcher struct {
	link string
}

func mailWithLink(link string) gomock.Matcher {
	return mailLinkMatcher{link: link}
}

func (m mailLinkMatcher) Matches(x interface{}) bool {
	mail, ok := x.(sendgrid.Mail)
	if !ok {
		return false
	}
	return mail.DynamicTemplateData["link"] == m.link
}

func (m mailLinkMatcher) String() string {
	return "mail with link " + m.link
}
