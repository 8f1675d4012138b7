package domain

import (
	"context"
	"database/sql"
	"time"
)

type TransactionType string

const (
	TransactionTypeWithdraw   TransactionType = "WITHDRAW"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	TransactionStatusAuthorized TransactionStatus = "AUTHORIZED"
	TransactionStatusInProgress TransactionStatus = "IN_PROGRESS"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
)

// TransactionItem is immutable once attached to a transaction.
type TransactionItem struct {
	MaterialID MaterialID `json:"material_id"`
	Quantity   int64      `json:"quantity"`
}

func (i TransactionItem) IsValid() bool {
	return i.Quantity > 0
}

// Transaction is the durable record of an authorized stock movement. It
// exclusively owns its items. Allowed transitions:
// AUTHORIZED -> IN_PROGRESS -> COMPLETED, or -> FAILED from any
// non-COMPLETED state.
type Transaction struct {
	ID           TransactionID     `json:"transaction_id"`
	Type         TransactionType   `json:"transaction_type"`
	Status       TransactionStatus `json:"status"`
	LaboratoryID LaboratoryID      `json:"laboratory_id"`
	UserID       UserID            `json:"user_id"`
	ProcedureID  *ProcedureID      `json:"procedure_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	AuthorizedAt *time.Time        `json:"authorized_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Items        []TransactionItem `json:"items"`
}

func (t *Transaction) StartProcessing() error {
	if t.Status != TransactionStatusAuthorized {
		return &InvalidTransactionStateError{Current: t.Status, Target: TransactionStatusInProgress}
	}
	t.Status = TransactionStatusInProgress
	return nil
}

func (t *Transaction) Complete() error {
	if t.Status != TransactionStatusInProgress {
		return &InvalidTransactionStateError{Current: t.Status, Target: TransactionStatusCompleted}
	}
	t.Status = TransactionStatusCompleted
	now := time.Now().UTC()
	t.CompletedAt = &now
	return nil
}

func (t *Transaction) Fail() error {
	if t.Status == TransactionStatusCompleted {
		return &InvalidTransactionStateError{Current: t.Status, Target: TransactionStatusFailed}
	}
	t.Status = TransactionStatusFailed
	return nil
}

func (t *Transaction) IsAuthorized() bool {
	return t.Status == TransactionStatusAuthorized
}

func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// TransactionFilter holds optional, ANDed listing filters.
type TransactionFilter struct {
	LaboratoryID *LaboratoryID
	UserID       *UserID
	Type         *TransactionType
	Status       *TransactionStatus
	StartDate    *time.Time
	EndDate      *time.Time
}

type ListTransactionsRequest struct {
	LaboratoryID string `query:"laboratory_id"`
	UserID       string `query:"user_id"`
	Type         string `query:"type"`
	Status       string `query:"status"`
	StartDate    string `query:"start_date"`
	EndDate      string `query:"end_date"`
}

type TransactionResponse struct {
	TransactionID TransactionID     `json:"transaction_id"`
	Type          TransactionType   `json:"transaction_type"`
	Status        TransactionStatus `json:"status"`
	LaboratoryID  LaboratoryID      `json:"laboratory_id"`
	ProcedureID   *ProcedureID      `json:"procedure_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	AuthorizedAt  *time.Time        `json:"authorized_at,omitempty"`
	Items         []TransactionItem `json:"items"`
}

type TransactionMaterialItem struct {
	ID       MaterialID `json:"id"`
	Name     string     `json:"name"`
	Quantity int64      `json:"quantity"`
}

type TransactionProcedure struct {
	ID    ProcedureID               `json:"id"`
	Name  string                    `json:"name"`
	Items []TransactionMaterialItem `json:"items"`
}

type TransactionListItem struct {
	EmployeeID UserID                `json:"employee_id"`
	Procedure  *TransactionProcedure `json:"procedure,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction, tx *sql.Tx) error
	GetByID(ctx context.Context, id TransactionID) (Transaction, error)
	Exists(ctx context.Context, id TransactionID) (bool, error)
	GetWithFilters(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	UpdateStatus(ctx context.Context, transaction *Transaction, tx *sql.Tx) error
}

type TransactionService interface {
	Withdraw(ctx context.Context, laboratoryID, procedureID string) (TransactionResponse, error)
	Complete(ctx context.Context, transactionID string) error
	GetListTransactions(ctx context.Context, param ListTransactionsRequest) ([]TransactionListItem, error)
}
