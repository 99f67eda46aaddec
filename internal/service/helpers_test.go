package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Seeded IDs from memory.SeedDemo.
const (
	seedCustomerID       int64 = 1
	seedAgentID          int64 = 1
	seedCardSpecialistID int64 = 2
	seedTransferID       int64 = 3

	complaintCardRetained   int64 = 1
	complaintFailedTransfer int64 = 2
	channelATM              int64 = 2
	channelMobile           int64 = 3
)

var (
	customerActor = domain.Actor{ID: seedCustomerID, Kind: domain.ActorKindCustomer}
	agentActor    = domain.Actor{ID: seedAgentID, Kind: domain.ActorKindEmployee, RoleID: domain.RoleIDAgent, DivisionID: domain.DivisionIDCXC}
	cardActor     = domain.Actor{ID: seedCardSpecialistID, Kind: domain.ActorKindEmployee, RoleID: 2, DivisionID: 2}
	transferActor = domain.Actor{ID: seedTransferID, Kind: domain.ActorKindEmployee, RoleID: 2, DivisionID: 4}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type recordingMailer struct {
	mu     sync.Mutex
	sent   []sentEmail
	failTo map[string]bool
}

func (m *recordingMailer) SendEmail(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *recordingMailer) Sent() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

type sentPush struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type recordingPusher struct {
	mu   sync.Mutex
	sent []sentPush
}

func (p *recordingPusher) SendPush(_ context.Context, token, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentPush{Token: token, Title: title, Body: body, Data: data})
	return nil
}

func (p *recordingPusher) Sent() []sentPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentPush(nil), p.sent...)
}

// syncSubmitter runs tasks inline so notification side effects are visible when Update returns.
type syncSubmitter struct{}

func (syncSubmitter) Submit(task func()) error {
	task()
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) Types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func testTicketConfig() config.TicketConfig {
	return config.TicketConfig{
		NumberPrefix:        "TCK",
		Timezone:            "UTC",
		DefaultSLADays:      1,
		DefaultPriorityCode: "REGULAR",
		SpecificityKeywords: config.DefaultSpecificityKeywords,
		NumberMaxAttempts:   3,
	}
}

type fixture struct {
	t          *testing.T
	store      *memory.Store
	clock      *fakeClock
	logger     *zap.Logger
	mailer     *recordingMailer
	pusher     *recordingPusher
	dispatcher events.Dispatcher
	published  *recordedEvents
	resolver   *PolicyResolver
	tickets    *TicketService
	notifier   *EscalationNotifier
	feedback   *FeedbackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	memory.SeedDemo(store, "unused-hash")

	f := &fixture{
		t:          t,
		store:      store,
		clock:      newFakeClock(),
		logger:     logger,
		mailer:     &recordingMailer{failTo: map[string]bool{}},
		pusher:     &recordingPusher{},
		dispatcher: events.NewInMemoryDispatcher(logger),
		published:  &recordedEvents{},
	}
	f.dispatcher.SubscribeAll(f.published.handler)

	f.resolver = NewPolicyResolver(store.Policies(), config.DefaultSpecificityKeywords, logger)
	f.tickets = f.ticketService(repository.NewCountingSequence(store.Tickets()))
	f.notifier = NewEscalationNotifier(NotifierDependencies{
		TicketRepo:      store.Tickets(),
		ActivityRepo:    store.Activities(),
		PolicyRepo:      store.Policies(),
		ReferenceRepo:   store.References(),
		CustomerRepo:    store.Customers(),
		EmployeeRepo:    store.Employees(),
		Mailer:          f.mailer,
		Pusher:          f.pusher,
		Logger:          logger,
		SendConcurrency: 2,
		Now:             f.clock.Now,
	})
	NewNotificationService(f.dispatcher, f.notifier, syncSubmitter{}, time.Minute, logger).RegisterHandlers()
	f.feedback = NewFeedbackService(store.Feedbacks(), store.Tickets(), store.Policies(), logger, f.clock.Now)
	return f
}

func (f *fixture) ticketService(sequence repository.TicketSequence) *TicketService {
	return NewTicketService(TicketDependencies{
		Tx:              f.store,
		TicketRepo:      f.store.Tickets(),
		ActivityRepo:    f.store.Activities(),
		StatusEventRepo: f.store.StatusEvents(),
		PolicyRepo:      f.store.Policies(),
		ReferenceRepo:   f.store.References(),
		CustomerRepo:    f.store.Customers(),
		Resolver:        f.resolver,
		Numbers:         NewTicketNumberGenerator(sequence, "TCK", time.UTC),
		Dispatcher:      f.dispatcher,
		Config:          testTicketConfig(),
		Logger:          f.logger,
		Now:             f.clock.Now,
	})
}

// createCardTicket files a card-retained-at-ATM complaint as the seeded customer.
func (f *fixture) createCardTicket() *TicketDetails {
	f.t.Helper()
	details, err := f.tickets.Create(context.Background(), customerActor, CreateTicketInput{
		ComplaintID:    complaintCardRetained,
		IssueChannelID: channelATM,
		Description:    "ATM swallowed my card",
	})
	require.NoError(f.t, err)
	return details
}

func (f *fixture) update(actor domain.Actor, ticketID, action string, patch domain.TicketPatch) (*TicketDetails, error) {
	return f.tickets.Update(context.Background(), actor, ticketID, UpdateTicketInput{Action: action, Patch: patch})
}

func (f *fixture) activities(ticketID string, types ...domain.ActivityType) []domain.TicketActivity {
	f.t.Helper()
	list, err := f.store.Activities().ListByTicket(context.Background(), ticketID, types...)
	require.NoError(f.t, err)
	return list
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, status, domainErr.HTTPStatus, domainErr.Message)
}

func strRef(s string) *string { return &s }
func idRef(v int64) *int64    { return &v }
