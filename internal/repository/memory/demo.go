package memory

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// SeedDemo adds policies, one terminal, a customer and employees for local runs.
// Every account uses passwordHash.
func SeedDemo(s *Store, passwordHash string) {
	now := time.Now().UTC()

	s.AddTerminal(domain.Terminal{Code: "ATM-JKT-001", Location: "Jakarta Sudirman"})

	s.AddPolicy(domain.ComplaintPolicy{ComplaintID: 1, ChannelID: ptr(int64(2)), SLADays: 3, UICID: ptr(int64(2)), Description: "Card retained at ATM"})
	s.AddPolicy(domain.ComplaintPolicy{ComplaintID: 1, SLADays: 5, UICID: ptr(int64(2)), Description: "Card retained, any channel"})
	s.AddPolicy(domain.ComplaintPolicy{ComplaintID: 2, ChannelID: ptr(int64(3)), SLADays: 2, UICID: ptr(int64(4)), Description: "Failed transfer ANTAR BANK via mobile"})
	s.AddPolicy(domain.ComplaintPolicy{ComplaintID: 2, ChannelID: ptr(int64(3)), SLADays: 2, UICID: ptr(int64(3)), Description: "Failed transfer via mobile"})
	s.AddPolicy(domain.ComplaintPolicy{ComplaintID: 3, SLADays: 7, UICID: ptr(int64(4)), Description: "Double debit"})

	s.AddCustomer(domain.Customer{
		FullName:     "Demo Customer",
		Email:        "customer@example.com",
		PhoneNumber:  "+620000000001",
		CIFNumber:    "CIF0000001",
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	for _, e := range []domain.Employee{
		{NPP: "CXC001", FullName: "Demo CXC Agent", Email: "agent@example.com", RoleID: domain.RoleIDAgent, DivisionID: domain.DivisionIDCXC},
		{NPP: "CRD001", FullName: "Demo Card Specialist", Email: "card@example.com", RoleID: 2, DivisionID: 2},
		{NPP: "TRF001", FullName: "Demo Transfer Specialist", Email: "transfer@example.com", RoleID: 2, DivisionID: 4},
	} {
		e.PasswordHash = passwordHash
		e.Active = true
		e.CreatedAt = now
		e.UpdatedAt = now
		s.AddEmployee(e)
	}
}
