package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainApp "line-of-credit/internal/domain/application"
	domainTx "line-of-credit/internal/domain/transaction"
	"line-of-credit/internal/domain/uow"
	"line-of-credit/pkg/id"
)

// Recorder receives committed lifecycle events; *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveTransition(from, to string)
	ObserveLedgerEntry(typ string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string) {}
func (nopRecorder) ObserveLedgerEntry(string)        {}

type Usecase struct {
	apps domainApp.Repository
	txns domainTx.Repository
	uow  uow.UnitOfWork
	log  *zap.Logger
	rec  Recorder
}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithRecorder(r Recorder) Option  { return func(u *Usecase) { u.rec = r } }

// NewUsecase: apps/txns serve the non-locking reads and the insert, tx serves every state change.
func NewUsecase(apps domainApp.Repository, txns domainTx.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{apps: apps, txns: txns, uow: tx, log: zap.NewNop(), rec: nopRecorder{}}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Create(ctx context.Context, in CreateApplicationInput) (*ApplicationDTO, error) {
	v := &domainApp.ValidationError{}
	if in.UserID == "" {
		v.Add("userId is required.")
	}
	if !in.RequestedAmount.IsPositive() {
		v.Add("requestedAmount must be a positive number.")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	a := &domainApp.Application{
		ApplicationID:   id.NewID32(),
		UserID:          in.UserID,
		RequestedAmount: in.RequestedAmount,
		State:           domainApp.StateOpen,
		ExpressDelivery: in.ExpressDelivery,
	}
	if err := u.apps.Create(ctx, a); err != nil {
		return nil, u.fail("create", "", err)
	}

	u.log.Info("application created",
		zap.String("application_id", a.ApplicationID),
		zap.String("user_id", a.UserID),
		zap.String("requested_amount", a.RequestedAmount.String()))
	dto := toApplicationDTO(a)
	return &dto, nil
}

// Disburse pays out once, Open -> Outstanding, recording the Disbursement in the same tx.
func (u *Usecase) Disburse(ctx context.Context, in AmountInput) (*MessageDTO, error) {
	if in.ApplicationID == "" || !in.Amount.IsPositive() {
		return nil, &domainApp.ValidationError{Messages: []string{
			"applicationId and disbursementAmount (positive number) are required.",
		}}
	}

	var from domainApp.State
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domainApp.Application) error {
		if err := domainApp.Check(a.State, domainApp.ActionDisburse); err != nil {
			return err
		}
		if in.Amount.GreaterThan(a.RequestedAmount) {
			return domainApp.ErrDisbursementExceedsRequested
		}
		from = a.State
		if err := r.Applications.UpdateState(ctx, a, domainApp.Target(domainApp.ActionDisburse)); err != nil {
			return err
		}
		return r.Transactions.Append(ctx, &domainTx.Transaction{
			TransactionID: id.NewID32(),
			ApplicationID: a.ID,
			Type:          domainTx.TypeDisbursement,
			Amount:        in.Amount,
		})
	})
	if err != nil {
		return nil, u.fail("disburse", in.ApplicationID, err)
	}

	u.rec.ObserveTransition(string(from), string(domainApp.StateOutstanding))
	u.rec.ObserveLedgerEntry(string(domainTx.TypeDisbursement))
	u.log.Info("funds disbursed",
		zap.String("application_id", in.ApplicationID),
		zap.String("amount", in.Amount.String()))
	return &MessageDTO{Message: MsgDisbursed}, nil
}

// Repay always records the Repayment, overshoot included. The application becomes Repaid
// once the ledger total, summed under the row lock, covers the requested amount.
func (u *Usecase) Repay(ctx context.Context, in AmountInput) (*RepaymentDTO, error) {
	if in.ApplicationID == "" || !in.Amount.IsPositive() {
		return nil, &domainApp.ValidationError{Messages: []string{
			"applicationId and repaymentAmount (positive number) are required.",
		}}
	}

	var (
		total decimal.Decimal
		state domainApp.State
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domainApp.Application) error {
		if err := domainApp.Check(a.State, domainApp.ActionRepay); err != nil {
			return err
		}
		prior, err := r.Transactions.Sum(ctx, a.ID, domainTx.TypeRepayment)
		if err != nil {
			return err
		}
		if err := r.Transactions.Append(ctx, &domainTx.Transaction{
			TransactionID: id.NewID32(),
			ApplicationID: a.ID,
			Type:          domainTx.TypeRepayment,
			Amount:        in.Amount,
		}); err != nil {
			return err
		}

		total = prior.Add(in.Amount)
		state = domainApp.RepaymentState(a.RequestedAmount, total)
		if state == a.State {
			return nil
		}
		return r.Applications.UpdateState(ctx, a, state)
	})
	if err != nil {
		return nil, u.fail("repay", in.ApplicationID, err)
	}

	u.rec.ObserveLedgerEntry(string(domainTx.TypeRepayment))
	if state == domainApp.StateRepaid {
		u.rec.ObserveTransition(string(domainApp.StateOutstanding), string(state))
	}
	u.log.Info("repayment recorded",
		zap.String("application_id", in.ApplicationID),
		zap.String("amount", in.Amount.String()),
		zap.String("total_repaid", total.String()),
		zap.String("state", string(state)))
	return &RepaymentDTO{Message: MsgRepaid, TotalRepaid: total, State: string(state)}, nil
}

func (u *Usecase) Cancel(ctx context.Context, applicationID string) (*MessageDTO, error) {
	if err := u.closeOpen(ctx, applicationID, domainApp.ActionCancel); err != nil {
		return nil, err
	}
	return &MessageDTO{Message: MsgCancelled}, nil
}

// Reject is admin-only; the flag is checked before anything else.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*MessageDTO, error) {
	if !in.IsAdmin {
		return nil, domainApp.ErrUnauthorized
	}
	if err := u.closeOpen(ctx, in.ApplicationID, domainApp.ActionReject); err != nil {
		return nil, err
	}
	return &MessageDTO{Message: MsgRejected}, nil
}

// closeOpen runs the ledger-free Open -> Cancelled/Rejected transitions.
func (u *Usecase) closeOpen(ctx context.Context, applicationID string, action domainApp.Action) error {
	if applicationID == "" {
		return &domainApp.ValidationError{Messages: []string{"applicationId is required."}}
	}
	to := domainApp.Target(action)
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domainApp.Application) error {
		if err := domainApp.Check(a.State, action); err != nil {
			return err
		}
		return r.Applications.UpdateState(ctx, a, to)
	})
	if err != nil {
		return u.fail(string(action), applicationID, err)
	}
	u.rec.ObserveTransition(string(domainApp.StateOpen), string(to))
	u.log.Info("application closed", zap.String("application_id", applicationID), zap.String("state", string(to)))
	return nil
}

// History lists the user's applications newest first, each with its ledger oldest first.
// An empty slice means the user has none.
func (u *Usecase) History(ctx context.Context, userID string) ([]ApplicationHistoryDTO, error) {
	if userID == "" {
		return nil, &domainApp.ValidationError{Messages: []string{"userId is required."}}
	}
	apps, err := u.apps.ListByUserID(ctx, userID)
	if err != nil {
		return nil, u.fail("history", "", err)
	}
	out := make([]ApplicationHistoryDTO, 0, len(apps))
	for i := range apps {
		txs, err := u.txns.ListByApplicationID(ctx, apps[i].ID)
		if err != nil {
			return nil, u.fail("history", apps[i].ApplicationID, err)
		}
		out = append(out, ApplicationHistoryDTO{
			ApplicationDTO: toApplicationDTO(&apps[i]),
			Transactions:   toTransactionDTOs(txs),
		})
	}
	return out, nil
}

// fail logs err at a level matching its class and hands it back unchanged.
func (u *Usecase) fail(op, applicationID string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if applicationID != "" {
		fields = append(fields, zap.String("application_id", applicationID))
	}
	if IsClientError(err) {
		u.log.Debug("request refused", fields...)
		return err
	}
	u.log.Error("operation failed", fields...)
	return err
}

// IsClientError reports errors caused by the request rather than the system.
func IsClientError(err error) bool {
	var ve *domainApp.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, s := range []error{
		domainApp.ErrInvalidTransition,
		domainApp.ErrNotFound,
		domainApp.ErrDuplicate,
		domainApp.ErrConflict,
		domainApp.ErrUnauthorized,
		domainApp.ErrDisbursementExceedsRequested,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
