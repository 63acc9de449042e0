package application

import "github.com/shopspring/decimal"

// Action is a lifecycle request against an application.
type Action string

const (
	ActionDisburse Action = "disburse"
	ActionRepay    Action = "repay"
	ActionCancel   Action = "cancel"
	ActionReject   Action = "reject"
)

var transitions = map[State][]State{
	StateOpen:        {StateOutstanding, StateCancelled, StateRejected},
	StateOutstanding: {StateRepaid},
}

// precondition is the only state each action may start from. Disbursement is single-shot,
// so it is not allowed once the application is Outstanding.
var precondition = map[Action]State{
	ActionDisburse: StateOpen,
	ActionRepay:    StateOutstanding,
	ActionCancel:   StateOpen,
	ActionReject:   StateOpen,
}

var target = map[Action]State{
	ActionDisburse: StateOutstanding,
	ActionCancel:   StateCancelled,
	ActionReject:   StateRejected,
	ActionRepay:    StateRepaid,
}

func (s State) Valid() bool {
	switch s {
	case StateOpen, StateOutstanding, StateRepaid, StateCancelled, StateRejected:
		return true
	}
	return false
}

// IsTerminal reports states with no outgoing transitions.
func (s State) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns a *TransitionError unless action may run from state `from`.
func Check(from State, action Action) error {
	if want, ok := precondition[action]; ok && want == from {
		return nil
	}
	return &TransitionError{From: from, Action: action}
}

// Target is the state an action moves to when it completes. For repay this is only reached
// once the ledger covers the requested amount, see RepaymentState.
func Target(action Action) State { return target[action] }

// RepaymentState derives the state from the cumulative repaid total.
func RepaymentState(requested, totalRepaid decimal.Decimal) State {
	if totalRepaid.GreaterThanOrEqual(requested) {
		return StateRepaid
	}
	return StateOutstanding
}
