package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
)

func TestPolicyResolver_Resolve(t *testing.T) {
	store := memory.NewStore()
	exact := store.AddPolicy(domain.ComplaintPolicy{ComplaintID: 1, ChannelID: idRef(2), SLADays: 3, UICID: idRef(2), Description: "Card retained at ATM"})
	anyChannel := store.AddPolicy(domain.ComplaintPolicy{ComplaintID: 1, SLADays: 5, UICID: idRef(2), Description: "Card retained"})
	resolver := NewPolicyResolver(store.Policies(), []string{" antar bank ", ""}, zaptest.NewLogger(t))
	ctx := context.Background()

	policy, err := resolver.Resolve(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, exact.ID, policy.ID)

	policy, err = resolver.Resolve(ctx, 1, 3)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, exact.ID, policy.ID, "complaint fallback prefers the shortest SLA")
	assert.NotEqual(t, anyChannel.ID, policy.ID)

	policy, err = resolver.Resolve(ctx, 9, 1)
	require.NoError(t, err)
	assert.Nil(t, policy)
}

func TestPolicyResolver_TieBreaks(t *testing.T) {
	cases := []struct {
		name     string
		policies []domain.ComplaintPolicy
		wantIdx  int
	}{
		{
			name: "shortest sla",
			policies: []domain.ComplaintPolicy{
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 5, UICID: idRef(2)},
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(4)},
			},
			wantIdx: 1,
		},
		{
			name: "specific keyword",
			policies: []domain.ComplaintPolicy{
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(2), Description: "Transfer failed"},
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(4), Description: "Transfer to Bank Lain failed"},
			},
			wantIdx: 1,
		},
		{
			name: "lowest uic",
			policies: []domain.ComplaintPolicy{
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(4)},
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(3)},
			},
			wantIdx: 1,
		},
		{
			name: "missing uic sorts last",
			policies: []domain.ComplaintPolicy{
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2},
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(9)},
			},
			wantIdx: 1,
		},
		{
			name: "lowest id",
			policies: []domain.ComplaintPolicy{
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(3)},
				{ComplaintID: 1, ChannelID: idRef(3), SLADays: 2, UICID: idRef(3)},
			},
			wantIdx: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			ids := make([]int64, len(tc.policies))
			for i, p := range tc.policies {
				ids[i] = store.AddPolicy(p).ID
			}
			resolver := NewPolicyResolver(store.Policies(), []string{"BANK LAIN"}, zaptest.NewLogger(t))

			for i := 0; i < 3; i++ {
				policy, err := resolver.Resolve(context.Background(), 1, 3)
				require.NoError(t, err)
				require.NotNil(t, policy)
				assert.Equal(t, ids[tc.wantIdx], policy.ID)
			}
		})
	}
}
