package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domainApp "line-of-credit/internal/domain/application"
	domainTx "line-of-credit/internal/domain/transaction"
	"line-of-credit/internal/domain/uow"
	"line-of-credit/internal/testutil/applicationmock"
	"line-of-credit/internal/testutil/transactionmock"
	"line-of-credit/internal/testutil/uowmock"
	"line-of-credit/pkg/id"
)

// ----- helpers -----

type recorder struct {
	transitions []string
	ledger      []string
}

func (r *recorder) ObserveTransition(from, to string) { r.transitions = append(r.transitions, from+"->"+to) }
func (r *recorder) ObserveLedgerEntry(typ string)     { r.ledger = append(r.ledger, typ) }

// fixture wires the usecase to in-memory mocks holding a single application.
type fixture struct {
	app      *domainApp.Application
	apps     *applicationmock.Repo
	txns     *transactionmock.Repo
	appended []*domainTx.Transaction
	rec      *recorder
	uc       *Usecase
}

func newFixture(state domainApp.State, requested int64) *fixture {
	f := &fixture{
		app: &domainApp.Application{
			ID:              7,
			ApplicationID:   id.NewID32(),
			UserID:          "u1",
			RequestedAmount: decimal.NewFromInt(requested),
			State:           state,
		},
		rec: &recorder{},
	}
	f.apps = &applicationmock.Repo{
		GetByApplicationIDForUpdateFn: func(ctx context.Context, applicationID string) (*domainApp.Application, error) {
			if applicationID != f.app.ApplicationID {
				return nil, domainApp.ErrNotFound
			}
			return f.app, nil
		},
	}
	f.txns = &transactionmock.Repo{
		AppendFn: func(ctx context.Context, t *domainTx.Transaction) error {
			f.appended = append(f.appended, t)
			return nil
		},
	}
	repos := uow.Repos{Applications: f.apps, Transactions: f.txns}
	f.uc = NewUsecase(f.apps, f.txns, uowmock.Passthrough(repos), WithRecorder(f.rec))
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var ve *domainApp.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %T: %v", err, err)
	}
	return ve.Messages
}

// ----- create -----

func TestCreate_Success(t *testing.T) {
	var stored *domainApp.Application
	apps := &applicationmock.Repo{
		CreateFn: func(ctx context.Context, a *domainApp.Application) error {
			stored = a
			return nil
		},
	}
	uc := NewUsecase(apps, &transactionmock.Repo{}, &uowmock.UoW{})

	dto, err := uc.Create(context.Background(), CreateApplicationInput{
		UserID: "u1", RequestedAmount: dec("1000.50"), ExpressDelivery: true,
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if stored == nil || stored.State != domainApp.StateOpen {
		t.Fatalf("stored = %+v, want state Open", stored)
	}
	if !id.IsID32(dto.ApplicationID) || dto.ApplicationID != stored.ApplicationID {
		t.Fatalf("applicationId = %q", dto.ApplicationID)
	}
	if dto.State != "Open" || !dto.ExpressDelivery || !dto.RequestedAmount.Equal(dec("1000.5")) {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestCreate_ValidationCollectsAllMessages(t *testing.T) {
	called := false
	apps := &applicationmock.Repo{CreateFn: func(context.Context, *domainApp.Application) error {
		called = true
		return nil
	}}
	uc := NewUsecase(apps, &transactionmock.Repo{}, &uowmock.UoW{})

	_, err := uc.Create(context.Background(), CreateApplicationInput{RequestedAmount: dec("-5")})
	msgs := validationMessages(t, err)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	if !strings.HasPrefix(err.Error(), "Validation failed: ") {
		t.Fatalf("err = %q", err.Error())
	}
	if called {
		t.Fatalf("store must not be touched on invalid input")
	}
}

func TestCreate_StoreErrorsPassThrough(t *testing.T) {
	for _, storeErr := range []error{domainApp.ErrDuplicate, fmt.Errorf("%w: boom", domainApp.ErrStoreUnavailable)} {
		apps := &applicationmock.Repo{CreateFn: func(context.Context, *domainApp.Application) error { return storeErr }}
		uc := NewUsecase(apps, &transactionmock.Repo{}, &uowmock.UoW{})
		_, err := uc.Create(context.Background(), CreateApplicationInput{UserID: "u1", RequestedAmount: dec("1")})
		if !errors.Is(err, storeErr) {
			t.Fatalf("want %v, got %v", storeErr, err)
		}
	}
}

// ----- disburse -----

func TestDisburse_Success(t *testing.T) {
	f := newFixture(domainApp.StateOpen, 1000)

	out, err := f.uc.Disburse(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("800")})
	if err != nil {
		t.Fatalf("Disburse err: %v", err)
	}
	if out.Message != MsgDisbursed {
		t.Fatalf("message = %q", out.Message)
	}
	if f.app.State != domainApp.StateOutstanding {
		t.Fatalf("state = %s", f.app.State)
	}
	if len(f.appended) != 1 || f.appended[0].Type != domainTx.TypeDisbursement ||
		!f.appended[0].Amount.Equal(dec("800")) || f.appended[0].ApplicationID != f.app.ID {
		t.Fatalf("ledger = %+v", f.appended)
	}
	if !id.IsID32(f.appended[0].TransactionID) {
		t.Fatalf("transactionId = %q", f.appended[0].TransactionID)
	}
	if len(f.rec.transitions) != 1 || f.rec.transitions[0] != "Open->Outstanding" {
		t.Fatalf("transitions = %v", f.rec.transitions)
	}
}

func TestDisburse_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		state  domainApp.State
		appID  func(f *fixture) string
		amount string
		check  func(t *testing.T, err error)
	}{
		{
			name: "missing id", state: domainApp.StateOpen,
			appID: func(*fixture) string { return "" }, amount: "10",
			check: func(t *testing.T, err error) {
				msgs := validationMessages(t, err)
				if msgs[0] != "applicationId and disbursementAmount (positive number) are required." {
					t.Fatalf("msgs = %v", msgs)
				}
			},
		},
		{
			name: "zero amount", state: domainApp.StateOpen,
			appID: func(f *fixture) string { return f.app.ApplicationID }, amount: "0",
			check: func(t *testing.T, err error) { validationMessages(t, err) },
		},
		{
			name: "unknown application", state: domainApp.StateOpen,
			appID: func(*fixture) string { return id.NewID32() }, amount: "10",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainApp.ErrNotFound) {
					t.Fatalf("want ErrNotFound, got %v", err)
				}
			},
		},
		{
			name: "cancelled", state: domainApp.StateCancelled,
			appID: func(f *fixture) string { return f.app.ApplicationID }, amount: "10",
			check: func(t *testing.T, err error) {
				var te *domainApp.TransitionError
				if !errors.As(err, &te) || te.Message() != "Cannot disburse funds for an application in Cancelled state." {
					t.Fatalf("err = %v", err)
				}
			},
		},
		{
			name: "already outstanding", state: domainApp.StateOutstanding,
			appID: func(f *fixture) string { return f.app.ApplicationID }, amount: "10",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainApp.ErrInvalidTransition) {
					t.Fatalf("want ErrInvalidTransition, got %v", err)
				}
			},
		},
		{
			name: "exceeds requested", state: domainApp.StateOpen,
			appID: func(f *fixture) string { return f.app.ApplicationID }, amount: "1000.01",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainApp.ErrDisbursementExceedsRequested) {
					t.Fatalf("want ErrDisbursementExceedsRequested, got %v", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.state, 1000)
			_, err := f.uc.Disburse(context.Background(), AmountInput{ApplicationID: tt.appID(f), Amount: dec(tt.amount)})
			tt.check(t, err)
			if f.app.State != tt.state {
				t.Fatalf("state changed to %s", f.app.State)
			}
			if len(f.appended) != 0 || len(f.rec.ledger) != 0 {
				t.Fatalf("ledger touched: %+v", f.appended)
			}
		})
	}
}

func TestDisburse_ConflictSurfaces(t *testing.T) {
	f := newFixture(domainApp.StateOpen, 1000)
	f.apps.UpdateStateFn = func(context.Context, *domainApp.Application, domainApp.State) error {
		return domainApp.ErrConflict
	}
	_, err := f.uc.Disburse(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("1")})
	if !errors.Is(err, domainApp.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if len(f.appended) != 0 {
		t.Fatalf("no ledger entry expected after a lost update")
	}
}

// ----- repay -----

func TestRepay_PartialThenFull(t *testing.T) {
	f := newFixture(domainApp.StateOutstanding, 1000)
	repaid := decimal.Zero
	f.txns.SumFn = func(ctx context.Context, applicationID uint64, typ domainTx.Type) (decimal.Decimal, error) {
		if typ != domainTx.TypeRepayment || applicationID != f.app.ID {
			t.Fatalf("unexpected Sum(%d, %s)", applicationID, typ)
		}
		return repaid, nil
	}
	f.txns.AppendFn = func(ctx context.Context, tx *domainTx.Transaction) error {
		f.appended = append(f.appended, tx)
		repaid = repaid.Add(tx.Amount)
		return nil
	}

	out, err := f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("600")})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if out.State != "Outstanding" || !out.TotalRepaid.Equal(dec("600")) || out.Message != MsgRepaid {
		t.Fatalf("first repay = %+v", out)
	}

	out, err = f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("400")})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if out.State != "Repaid" || !out.TotalRepaid.Equal(dec("1000")) {
		t.Fatalf("second repay = %+v", out)
	}
	if f.app.State != domainApp.StateRepaid {
		t.Fatalf("state = %s", f.app.State)
	}
	if len(f.rec.transitions) != 1 || f.rec.transitions[0] != "Outstanding->Repaid" {
		t.Fatalf("transitions = %v", f.rec.transitions)
	}
	if len(f.rec.ledger) != 2 {
		t.Fatalf("ledger observations = %v", f.rec.ledger)
	}
}

func TestRepay_OverpaymentIsRecorded(t *testing.T) {
	f := newFixture(domainApp.StateOutstanding, 1000)
	f.txns.SumFn = func(context.Context, uint64, domainTx.Type) (decimal.Decimal, error) { return dec("900"), nil }

	out, err := f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("500")})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if out.State != "Repaid" || !out.TotalRepaid.Equal(dec("1400")) {
		t.Fatalf("out = %+v", out)
	}
	if len(f.appended) != 1 || !f.appended[0].Amount.Equal(dec("500")) {
		t.Fatalf("overshoot not recorded in full: %+v", f.appended)
	}
}

func TestRepay_Refusals(t *testing.T) {
	for _, state := range []domainApp.State{domainApp.StateOpen, domainApp.StateRepaid, domainApp.StateCancelled} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(state, 1000)
			_, err := f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("1")})
			var te *domainApp.TransitionError
			if !errors.As(err, &te) || te.From != state {
				t.Fatalf("err = %v", err)
			}
			if len(f.appended) != 0 {
				t.Fatalf("ledger touched")
			}
		})
	}

	f := newFixture(domainApp.StateOutstanding, 1000)
	_, err := f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("-1")})
	if msgs := validationMessages(t, err); msgs[0] != "applicationId and repaymentAmount (positive number) are required." {
		t.Fatalf("msgs = %v", msgs)
	}
}

func TestRepay_SumFailureAborts(t *testing.T) {
	f := newFixture(domainApp.StateOutstanding, 1000)
	f.txns.SumFn = func(context.Context, uint64, domainTx.Type) (decimal.Decimal, error) {
		return decimal.Zero, domainApp.ErrStoreUnavailable
	}
	_, err := f.uc.Repay(context.Background(), AmountInput{ApplicationID: f.app.ApplicationID, Amount: dec("1")})
	if !errors.Is(err, domainApp.ErrStoreUnavailable) || IsClientError(err) {
		t.Fatalf("err = %v", err)
	}
	if len(f.appended) != 0 {
		t.Fatalf("ledger touched")
	}
}

// ----- cancel / reject -----

func TestCancel(t *testing.T) {
	f := newFixture(domainApp.StateOpen, 1000)
	out, err := f.uc.Cancel(context.Background(), f.app.ApplicationID)
	if err != nil || out.Message != MsgCancelled {
		t.Fatalf("Cancel = %+v, %v", out, err)
	}
	if f.app.State != domainApp.StateCancelled {
		t.Fatalf("state = %s", f.app.State)
	}

	// second cancel is refused from the terminal state
	_, err = f.uc.Cancel(context.Background(), f.app.ApplicationID)
	var te *domainApp.TransitionError
	if !errors.As(err, &te) || te.Message() != "Cannot cancel an application in Cancelled state." {
		t.Fatalf("err = %v", err)
	}

	if _, err := f.uc.Cancel(context.Background(), ""); err == nil {
		t.Fatalf("empty id must fail validation")
	}
}

func TestReject(t *testing.T) {
	t.Run("non-admin refused before lookup", func(t *testing.T) {
		f := newFixture(domainApp.StateOpen, 1000)
		f.apps.GetByApplicationIDForUpdateFn = func(context.Context, string) (*domainApp.Application, error) {
			t.Fatalf("store must not be read for a non-admin")
			return nil, nil
		}
		_, err := f.uc.Reject(context.Background(), RejectInput{ApplicationID: f.app.ApplicationID})
		if !errors.Is(err, domainApp.ErrUnauthorized) {
			t.Fatalf("want ErrUnauthorized, got %v", err)
		}
	})
	t.Run("admin", func(t *testing.T) {
		f := newFixture(domainApp.StateOpen, 1000)
		out, err := f.uc.Reject(context.Background(), RejectInput{ApplicationID: f.app.ApplicationID, IsAdmin: true})
		if err != nil || out.Message != MsgRejected || f.app.State != domainApp.StateRejected {
			t.Fatalf("Reject = %+v, %v (state %s)", out, err, f.app.State)
		}
		if f.rec.transitions[0] != "Open->Rejected" {
			t.Fatalf("transitions = %v", f.rec.transitions)
		}
	})
	t.Run("outstanding", func(t *testing.T) {
		f := newFixture(domainApp.StateOutstanding, 1000)
		_, err := f.uc.Reject(context.Background(), RejectInput{ApplicationID: f.app.ApplicationID, IsAdmin: true})
		if !errors.Is(err, domainApp.ErrInvalidTransition) {
			t.Fatalf("err = %v", err)
		}
	})
}

// ----- history -----

func TestHistory(t *testing.T) {
	apps := &applicationmock.Repo{
		ListByUserIDFn: func(ctx context.Context, userID string) ([]domainApp.Application, error) {
			if userID != "u1" {
				return nil, nil
			}
			return []domainApp.Application{
				{ID: 2, ApplicationID: "b", UserID: "u1", State: domainApp.StateOpen},
				{ID: 1, ApplicationID: "a", UserID: "u1", State: domainApp.StateOutstanding},
			}, nil
		},
	}
	txns := &transactionmock.Repo{
		ListByApplicationIDFn: func(ctx context.Context, applicationID uint64) ([]domainTx.Transaction, error) {
			if applicationID == 1 {
				return []domainTx.Transaction{{TransactionID: "t1", Type: domainTx.TypeDisbursement, Amount: dec("5")}}, nil
			}
			return nil, nil
		},
	}
	uc := NewUsecase(apps, txns, &uowmock.UoW{})

	out, err := uc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(out) != 2 || out[0].ApplicationID != "b" || out[1].ApplicationID != "a" {
		t.Fatalf("out = %+v", out)
	}
	if out[0].Transactions == nil || len(out[0].Transactions) != 0 {
		t.Fatalf("empty ledger must be a non-nil empty slice: %#v", out[0].Transactions)
	}
	if len(out[1].Transactions) != 1 || out[1].Transactions[0].Type != "Disbursement" {
		t.Fatalf("ledger = %+v", out[1].Transactions)
	}

	none, err := uc.History(context.Background(), "nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("want empty, got %v, %v", none, err)
	}

	if _, err := uc.History(context.Background(), ""); err == nil {
		t.Fatalf("empty userId must fail validation")
	}
}

func TestHistory_LedgerFailureSurfaces(t *testing.T) {
	apps := &applicationmock.Repo{
		ListByUserIDFn: func(context.Context, string) ([]domainApp.Application, error) {
			return []domainApp.Application{{ID: 1, ApplicationID: "a"}}, nil
		},
	}
	// unset ListByApplicationIDFn returns context.Canceled
	uc := NewUsecase(apps, &transactionmock.Repo{}, &uowmock.UoW{})
	if _, err := uc.History(context.Background(), "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestIsClientError(t *testing.T) {
	client := []error{
		&domainApp.ValidationError{Messages: []string{"x"}},
		&domainApp.TransitionError{From: domainApp.StateOpen, Action: domainApp.ActionRepay},
		domainApp.ErrNotFound, domainApp.ErrDuplicate, domainApp.ErrConflict,
		domainApp.ErrUnauthorized, domainApp.ErrDisbursementExceedsRequested,
	}
	for _, err := range client {
		if !IsClientError(err) {
			t.Fatalf("%v should be a client error", err)
		}
	}
	for _, err := range []error{domainApp.ErrStoreUnavailable, errors.New("boom")} {
		if IsClientError(err) {
			t.Fatalf("%v should not be a client error", err)
		}
	}
}
