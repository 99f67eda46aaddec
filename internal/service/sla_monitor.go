package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// SLAAlertKind distinguishes the two scans.
type SLAAlertKind string

const (
	SLAAlertWarning SLAAlertKind = "warning"
	SLAAlertOverdue SLAAlertKind = "overdue"
)

// SLAAlert is a ticket selected by a scan.
type SLAAlert struct {
	Kind           SLAAlertKind
	Ticket         domain.Ticket
	HoursOverdue   int
	HoursRemaining float64
}

// SLAMonitorDependencies bundles collaborators for the SLA monitor.
type SLAMonitorDependencies struct {
	TicketRepo   repository.TicketRepository
	ActivityRepo repository.TicketActivityRepository
	EmployeeRepo repository.EmployeeRepository
	Suppressor   repository.AlertSuppressor
	Pusher       notification.Pusher
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Config       config.SLAConfig
	Logger       *zap.Logger
	Now          func() time.Time
}

// SLAMonitor finds tickets close to or past their committed due date and alerts employees.
type SLAMonitor struct {
	tickets    repository.TicketRepository
	activities repository.TicketActivityRepository
	employees  repository.EmployeeRepository
	suppressor repository.AlertSuppressor
	pusher     notification.Pusher
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	cfg        config.SLAConfig
	logger     *zap.Logger
	nowFn      func() time.Time
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(deps SLAMonitorDependencies) *SLAMonitor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := deps.Config
	if cfg.WarningWindow <= 0 {
		cfg.WarningWindow = time.Hour
	}
	return &SLAMonitor{
		tickets:    deps.TicketRepo,
		activities: deps.ActivityRepo,
		employees:  deps.EmployeeRepo,
		suppressor: deps.Suppressor,
		pusher:     deps.Pusher,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		cfg:        cfg,
		logger:     deps.Logger.Named("sla_monitor"),
		nowFn:      now,
	}
}

// ScanDueSoon returns open tickets whose committed due date falls within the warning window.
func (m *SLAMonitor) ScanDueSoon(ctx context.Context) ([]SLAAlert, error) {
	now := m.nowFn().UTC()
	tickets, err := m.tickets.ListDueBetween(ctx, now, now.Add(m.cfg.WarningWindow))
	if err != nil {
		return nil, err
	}
	alerts := make([]SLAAlert, 0, len(tickets))
	for _, t := range tickets {
		alerts = append(alerts, SLAAlert{
			Kind:           SLAAlertWarning,
			Ticket:         t,
			HoursRemaining: roundHours(t.CommittedDueAt.Sub(now)),
		})
	}
	return alerts, nil
}

// ScanOverdue returns open tickets past their committed due date.
func (m *SLAMonitor) ScanOverdue(ctx context.Context) ([]SLAAlert, error) {
	now := m.nowFn().UTC()
	tickets, err := m.tickets.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	alerts := make([]SLAAlert, 0, len(tickets))
	for _, t := range tickets {
		alerts = append(alerts, SLAAlert{
			Kind:         SLAAlertOverdue,
			Ticket:       t,
			HoursOverdue: int(math.Floor(now.Sub(t.CommittedDueAt).Hours())),
		})
	}
	return alerts, nil
}

// RunWarningScan scans for due-soon tickets and alerts on each. It returns the number of alerts sent.
func (m *SLAMonitor) RunWarningScan(ctx context.Context) (int, error) {
	alerts, err := m.ScanDueSoon(ctx)
	if err != nil {
		return 0, err
	}
	return m.deliver(ctx, alerts, m.cfg.WarningSuppressTTL), nil
}

// RunOverdueScan scans for overdue tickets and alerts on each. It returns the number of alerts sent.
func (m *SLAMonitor) RunOverdueScan(ctx context.Context) (int, error) {
	alerts, err := m.ScanOverdue(ctx)
	if err != nil {
		return 0, err
	}
	return m.deliver(ctx, alerts, m.cfg.OverdueSuppressTTL), nil
}

func (m *SLAMonitor) deliver(ctx context.Context, alerts []SLAAlert, ttl time.Duration) int {
	sent := 0
	for _, alert := range alerts {
		if ctx.Err() != nil {
			break
		}
		held := false
		if m.cfg.SuppressRepeats && m.suppressor != nil {
			ok, err := m.suppressor.Acquire(ctx, string(alert.Kind), alert.Ticket.ID, ttl)
			if err != nil {
				m.logger.Warn("alert suppression unavailable, sending anyway",
					zap.String("ticket_id", alert.Ticket.ID),
					zap.Error(err))
			} else if !ok {
				m.metrics.RecordSLAAlert(string(alert.Kind), "suppressed")
				continue
			}
			held = err == nil
		}
		if m.alert(ctx, alert) {
			sent++
			continue
		}
		if held {
			// A failed alert must not block the next scan.
			if err := m.suppressor.Release(ctx, string(alert.Kind), alert.Ticket.ID); err != nil {
				m.logger.Warn("release alert suppression", zap.String("ticket_id", alert.Ticket.ID), zap.Error(err))
			}
		}
	}
	return sent
}

// alert pushes to the responsible employee, or to every active CXC agent when nobody owns the ticket.
func (m *SLAMonitor) alert(ctx context.Context, alert SLAAlert) bool {
	ticket := alert.Ticket
	recipients, err := m.recipients(ctx, ticket)
	if err != nil {
		m.logger.Warn("resolve sla alert recipients", zap.String("ticket_id", ticket.ID), zap.Error(err))
		m.metrics.RecordSLAAlert(string(alert.Kind), "failed")
		return false
	}

	title, body := alertText(alert)
	data := map[string]string{"ticket_id": ticket.ID, "type": "sla_" + string(alert.Kind)}
	delivered := 0
	for _, employee := range recipients {
		if employee.PushToken == nil || *employee.PushToken == "" {
			continue
		}
		if err := m.pusher.SendPush(ctx, *employee.PushToken, title, body, data); err != nil {
			m.logger.Warn("sla push failed",
				zap.String("ticket_id", ticket.ID),
				zap.Int64("employee_id", employee.ID),
				zap.Error(err))
			continue
		}
		delivered++
	}

	now := m.nowFn().UTC()
	content := fmt.Sprintf("%s: push sent to %d of %d employee(s)", body, delivered, len(recipients))
	if err := m.activities.Create(ctx, &domain.TicketActivity{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		ActivityType: domain.ActivityTypeNotification,
		SenderType:   domain.SenderTypeSystem,
		Content:      content,
		ActivityTime: now,
	}); err != nil {
		m.logger.Warn("record sla activity", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	eventType := events.EventSLAWarning
	if alert.Kind == SLAAlertOverdue {
		eventType = events.EventSLAOverdue
	}
	if m.dispatcher != nil {
		_ = m.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      eventType,
			TicketID:  ticket.ID,
			Actor:     events.ActorOf(domain.SystemActor),
			Timestamp: now,
			Payload: events.SLAAlertPayload{
				TicketNumber:   ticket.TicketNumber,
				CommittedDueAt: ticket.CommittedDueAt,
				HoursOverdue:   float64(alert.HoursOverdue),
			},
		})
	}

	m.metrics.RecordSLAAlert(string(alert.Kind), "sent")
	m.logger.Info("sla alert",
		zap.String("kind", string(alert.Kind)),
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.Int("recipients", len(recipients)),
		zap.Int("delivered", delivered))
	return true
}

func (m *SLAMonitor) recipients(ctx context.Context, ticket domain.Ticket) ([]domain.Employee, error) {
	if ticket.ResponsibleEmployeeID != nil {
		employee, err := m.employees.GetByID(ctx, *ticket.ResponsibleEmployeeID)
		if err == nil && employee.Active {
			return []domain.Employee{*employee}, nil
		}
	}
	division, role, active := domain.DivisionIDCXC, domain.RoleIDAgent, true
	return m.employees.List(ctx, repository.EmployeeFilter{DivisionID: &division, RoleID: &role, Active: &active})
}

func alertText(alert SLAAlert) (string, string) {
	number := alert.Ticket.TicketNumber
	if alert.Kind == SLAAlertOverdue {
		return "Ticket overdue", fmt.Sprintf("Ticket %s is %d hour(s) overdue", number, alert.HoursOverdue)
	}
	return "Ticket due soon", fmt.Sprintf("Ticket %s is due in %.1f hour(s)", number, alert.HoursRemaining)
}
