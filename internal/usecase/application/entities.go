package application

import (
	"time"

	"github.com/shopspring/decimal"

	domainApp "line-of-credit/internal/domain/application"
	domainTx "line-of-credit/internal/domain/transaction"
)

const (
	MsgDisbursed      = "Funds disbursed successfully."
	MsgRepaid         = "Repayment processed successfully."
	MsgCancelled      = "Application cancelled successfully."
	MsgRejected       = "Application rejected successfully."
	MsgNoApplications = "No applications found for this user."
)

type CreateApplicationInput struct {
	UserID          string
	RequestedAmount decimal.Decimal
	ExpressDelivery bool
}

// AmountInput serves both disbursement and repayment.
type AmountInput struct {
	ApplicationID string
	Amount        decimal.Decimal
}

type RejectInput struct {
	ApplicationID string
	IsAdmin       bool
}

type ApplicationDTO struct {
	ApplicationID   string          `json:"applicationId"`
	UserID          string          `json:"userId"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	State           string          `json:"state"`
	ExpressDelivery bool            `json:"expressDelivery"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type TransactionDTO struct {
	TransactionID string          `json:"transactionId"`
	Type          string          `json:"transactionType"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ApplicationHistoryDTO flattens the application fields next to its ledger.
type ApplicationHistoryDTO struct {
	ApplicationDTO
	Transactions []TransactionDTO `json:"transactions"`
}

type MessageDTO struct {
	Message string `json:"message"`
}

type RepaymentDTO struct {
	Message     string          `json:"message"`
	TotalRepaid decimal.Decimal `json:"totalRepaid"`
	State       string          `json:"state"`
}

func toApplicationDTO(a *domainApp.Application) ApplicationDTO {
	return ApplicationDTO{
		ApplicationID:   a.ApplicationID,
		UserID:          a.UserID,
		RequestedAmount: a.RequestedAmount,
		State:           string(a.State),
		ExpressDelivery: a.ExpressDelivery,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toTransactionDTOs(in []domainTx.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(in))
	for _, t := range in {
		out = append(out, TransactionDTO{
			TransactionID: t.TransactionID,
			Type:          string(t.Type),
			Amount:        t.Amount,
			CreatedAt:     t.CreatedAt,
		})
	}
	return out
}
