package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TicketAction is the caller-supplied token selecting a transition.
type TicketAction string

const (
	ActionHandledCXC TicketAction = "HANDLEDCXC"
	ActionEscalated  TicketAction = "ESCALATED"
	ActionClosed     TicketAction = "CLOSED"
	ActionDeclined   TicketAction = "DECLINED"
	ActionDoneByUIC  TicketAction = "DONE_BY_UIC"
)

// ParseTicketAction normalizes a raw action token.
func ParseTicketAction(raw string) (TicketAction, error) {
	action := TicketAction(strings.ToUpper(strings.TrimSpace(raw)))
	switch action {
	case ActionHandledCXC, ActionEscalated, ActionClosed, ActionDeclined, ActionDoneByUIC:
		return action, nil
	default:
		return "", &CommandError{Message: fmt.Sprintf("unknown action %q", raw)}
	}
}

// CommandError reports a command that cannot be built from the supplied fields.
type CommandError struct {
	Message string
	Fields  []string
}

func (e *CommandError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// TicketPatch carries the optional fields of an update request before they are
// narrowed into a command.
type TicketPatch struct {
	ComplaintID    *int64
	IssueChannelID *int64
	PriorityID     *int64
	TerminalID     *int64
	Record         *string
	Reason         *string
	Solution       *string
	DivisionNote   *string
}

func (p TicketPatch) provided() map[string]bool {
	fields := map[string]bool{}
	if p.ComplaintID != nil {
		fields["complaint_id"] = true
	}
	if p.IssueChannelID != nil {
		fields["issue_channel_id"] = true
	}
	if p.PriorityID != nil {
		fields["priority_id"] = true
	}
	if p.TerminalID != nil {
		fields["terminal_id"] = true
	}
	if p.Record != nil {
		fields["record"] = true
	}
	if p.Reason != nil {
		fields["reason"] = true
	}
	if p.Solution != nil {
		fields["solution"] = true
	}
	if nonBlank(p.DivisionNote) {
		fields["division_note"] = true
	}
	return fields
}

// TicketCommand is one of the tagged update variants. Each variant carries
// exactly the fields its action may change.
type TicketCommand interface {
	// Action returns the transition token, or "" for edits that leave status untouched.
	Action() TicketAction
	isTicketCommand()
}

// HandleByCXC marks the ticket as handled by the acting CXC agent.
type HandleByCXC struct {
	Record       *string
	PriorityID   *int64
	DivisionNote *string
}

// Escalate routes the ticket to the division of its (re)resolved policy.
type Escalate struct {
	ComplaintID    *int64
	IssueChannelID *int64
	PriorityID     *int64
	TerminalID     *int64
	Record         *string
	DivisionNote   *string
}

// Close terminates the ticket as solved.
type Close struct {
	Solution *string
}

// Decline terminates the ticket as rejected.
type Decline struct {
	Reason *string
}

// MarkDoneByUIC hands the ticket back from the specialist division.
type MarkDoneByUIC struct {
	Solution     *string
	DivisionNote *string
}

// AddDivisionNote appends a note without touching status.
type AddDivisionNote struct {
	Note string
}

func (HandleByCXC) Action() TicketAction { return ActionHandledCXC }
func (Escalate) Action() TicketAction { return ActionEscalated }
func (Close) Action() TicketAction { return ActionClosed }
func (Decline) Action() TicketAction { return ActionDeclined }
func (MarkDoneByUIC) Action() TicketAction { return ActionDoneByUIC }
func (AddDivisionNote) Action() TicketAction { return "" }

func (HandleByCXC) isTicketCommand() {}
func (Escalate) isTicketCommand() {}
func (Close) isTicketCommand() {}
func (Decline) isTicketCommand() {}
func (MarkDoneByUIC) isTicketCommand() {}
func (AddDivisionNote) isTicketCommand() {}

var permittedFields = map[TicketAction][]string{
	ActionHandledCXC: {"record", "priority_id", "division_note"},
	ActionEscalated:  {"complaint_id", "issue_channel_id", "priority_id", "terminal_id", "record", "division_note"},
	ActionClosed:     {"solution"},
	ActionDeclined:   {"reason"},
	ActionDoneByUIC:  {"solution", "division_note"},
	"":               {"division_note"},
}

// NewTicketCommand narrows a patch into the command for action. An empty action
// yields a note-only edit. Fields that the action may not change are rejected.
func NewTicketCommand(action TicketAction, patch TicketPatch) (TicketCommand, error) {
	allowed, ok := permittedFields[action]
	if !ok {
		return nil, &CommandError{Message: fmt.Sprintf("unknown action %q", action)}
	}
	provided := patch.provided()
	allowedSet := make(map[string]bool, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = true
	}
	var rejected []string
	for field := range provided {
		if !allowedSet[field] {
			rejected = append(rejected, field)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		label := string(action)
		if label == "" {
			label = "note-only update"
		}
		return nil, &CommandError{Message: fmt.Sprintf("fields not permitted for %s", label), Fields: rejected}
	}

	note := trimmed(patch.DivisionNote)
	switch action {
	case ActionHandledCXC:
		return HandleByCXC{Record: patch.Record, PriorityID: patch.PriorityID, DivisionNote: note}, nil
	case ActionEscalated:
		return Escalate{
			ComplaintID:    patch.ComplaintID,
			IssueChannelID: patch.IssueChannelID,
			PriorityID:     patch.PriorityID,
			TerminalID:     patch.TerminalID,
			Record:         patch.Record,
			DivisionNote:   note,
		}, nil
	case ActionClosed:
		return Close{Solution: trimmed(patch.Solution)}, nil
	case ActionDeclined:
		return Decline{Reason: trimmed(patch.Reason)}, nil
	case ActionDoneByUIC:
		return MarkDoneByUIC{Solution: trimmed(patch.Solution), DivisionNote: note}, nil
	default:
		if note == nil {
			return nil, &CommandError{Message: "no action and no valid fields supplied"}
		}
		return AddDivisionNote{Note: *note}, nil
	}
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func trimmed(s *string) *string {
	if !nonBlank(s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
