package trade

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CommissionParty identifies who a commission is owed to
type CommissionParty string

const (
	CommissionPartySeller   CommissionParty = "seller"
	CommissionPartyAlliance CommissionParty = "alliance"
)

// IsValid reports whether p is a known party
func (p CommissionParty) IsValid() bool {
	return p == CommissionPartySeller || p == CommissionPartyAlliance
}

// CommissionPayment is money paid out to a seller or an alliance for an order.
// It is never reconciled automatically against the accrual.
type CommissionPayment struct {
	shared.BaseEntity
	OrderID    uuid.UUID
	Party      CommissionParty
	SellerID   *uuid.UUID
	AllianceID *uuid.UUID
	Amount     int64
	Date       time.Time
	Notes      string
}

// NewCommissionPayment records a payout to exactly one party
func NewCommissionPayment(orderID uuid.UUID, party CommissionParty, partnerID uuid.UUID, amount int64, date time.Time, notes string) (*CommissionPayment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Commission payment amount must be positive")
	}

	cp := &CommissionPayment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Party:      party,
		Amount:     amount,
		Date:       date,
		Notes:      strings.TrimSpace(notes),
	}
	switch party {
	case CommissionPartySeller:
		cp.SellerID = &partnerID
	case CommissionPartyAlliance:
		cp.AllianceID = &partnerID
	default:
		return nil, shared.NewDomainError("INVALID_PARTY", "Unknown commission party: "+string(party))
	}
	return cp, nil
}

// PartnerID returns the seller or alliance the payout went to
func (c *CommissionPayment) PartnerID() uuid.UUID {
	if c.SellerID != nil {
		return *c.SellerID
	}
	if c.AllianceID != nil {
		return *c.AllianceID
	}
	return uuid.Nil
}
