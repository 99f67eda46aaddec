package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestFeedback_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCardTicket()
	id := created.Ticket.ID

	_, err := f.feedback.Submit(ctx, customerActor, id, 5, "")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.update(agentActor, id, "CLOSED", domain.TicketPatch{Solution: strRef("card returned")})
	require.NoError(t, err)

	_, err = f.feedback.Submit(ctx, customerActor, id, 6, "")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.feedback.Submit(ctx, agentActor, id, 4, "")
	requireStatus(t, err, http.StatusForbidden)

	feedback, err := f.feedback.Submit(ctx, customerActor, id, 4, "  quick fix  ")
	require.NoError(t, err)
	assert.Equal(t, 4, feedback.Score)
	assert.Equal(t, "quick fix", feedback.Comment)

	_, err = f.feedback.Submit(ctx, customerActor, id, 5, "again")
	requireStatus(t, err, http.StatusConflict)

	score := 5
	_, err = f.feedback.UpdateComment(ctx, customerActor, id, &score, "changed")
	requireStatus(t, err, http.StatusBadRequest)

	f.clock.Advance(time.Hour)
	updated, err := f.feedback.UpdateComment(ctx, customerActor, id, nil, "quick and friendly")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Score)
	assert.Equal(t, "quick and friendly", updated.Comment)
	assert.Equal(t, f.clock.Now(), updated.UpdatedAt)

	got, err := f.feedback.Get(ctx, agentActor, id)
	require.NoError(t, err)
	assert.Equal(t, "quick and friendly", got.Comment)

	_, err = f.feedback.Get(ctx, transferActor, id)
	requireStatus(t, err, http.StatusForbidden)
}

func TestFeedback_OwnershipAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddCustomer(domain.Customer{FullName: "Other", Email: "other@example.com"})
	otherActor := domain.Actor{ID: other.ID, Kind: domain.ActorKindCustomer}

	created := f.createCardTicket()
	_, err := f.update(agentActor, created.Ticket.ID, "CLOSED", domain.TicketPatch{})
	require.NoError(t, err)

	_, err = f.feedback.Submit(ctx, otherActor, created.Ticket.ID, 3, "")
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.feedback.Submit(ctx, customerActor, "missing", 3, "")
	requireStatus(t, err, http.StatusNotFound)

	_, err = f.feedback.Get(ctx, customerActor, created.Ticket.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = f.feedback.UpdateComment(ctx, customerActor, created.Ticket.ID, nil, "nothing to update")
	requireStatus(t, err, http.StatusNotFound)
}
