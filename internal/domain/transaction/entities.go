package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDisbursement Type = "Disbursement"
	TypeRepayment    Type = "Repayment"
)

// Table: transactions. Rows are append-only; nothing updates or deletes them.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string          `gorm:"column:transaction_id;size:32;not null;uniqueIndex:ux_transactions_transaction_id" json:"transactionId"`
	ApplicationID uint64          `gorm:"column:application_id;not null;index:idx_transactions_app_type,priority:1" json:"-"`
	Type          Type            `gorm:"column:transaction_type;type:varchar(16);not null;index:idx_transactions_app_type,priority:2" json:"transactionType"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Transaction) TableName() string { return "transactions" }
