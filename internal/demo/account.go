// Package demo holds a small instrumented aggregate written the way a field
// accessor generator would emit it, and the scenario the CLI runs against it.
package demo

import (
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
)

// InitialBalance is the balance of a new account.
const InitialBalance = 12

// Account has two traced fields.
type Account struct {
	balance *fieldtrace.Field[*Account, int]
	owner   *fieldtrace.Field[*Account, string]
}

// Field tokens. Self tokens let an observer reach the container through the
// parent in an event.
var (
	BalanceField = fieldtrace.NewFieldToken("balance", func(a *Account) int { return a.balance.GetUntraced() })
	OwnerField   = fieldtrace.NewFieldToken("owner", func(a *Account) string { return a.owner.GetUntraced() })

	BalanceSelf = fieldtrace.NewSelfToken("balance", func(a *Account) *fieldtrace.Field[*Account, int] { return a.balance })
	OwnerSelf   = fieldtrace.NewSelfToken("owner", func(a *Account) *fieldtrace.Field[*Account, string] { return a.owner })
)

// NewAccount creates an account whose fields report to obs. opts are applied
// to both fields.
func NewAccount(owner string, obs fieldtrace.ErasedObserver, opts ...fieldtrace.Option) *Account {
	a := &Account{}
	a.balance = fieldtrace.New[*Account](InitialBalance,
		append([]fieldtrace.Option{
			fieldtrace.WithErasedObserver(obs),
			fieldtrace.WithFieldToken(BalanceField),
			fieldtrace.WithSelfToken(BalanceSelf),
		}, opts...)...)
	a.owner = fieldtrace.New[*Account](owner,
		append([]fieldtrace.Option{
			fieldtrace.WithErasedObserver(obs),
			fieldtrace.WithFieldToken(OwnerField),
			fieldtrace.WithSelfToken(OwnerSelf),
		}, opts...)...)

	// The fields live inside the account; a strong back-reference would
	// keep it alive through its own fields.
	a.balance.SetParentResolver(fieldtrace.WeakParent(a))
	a.owner.SetParentResolver(fieldtrace.WeakParent(a))

	return a
}

//go:noinline
func (a *Account) Balance() int { return a.balance.Get() }

//go:noinline
func (a *Account) SetBalance(v int) { a.balance.Set(v) }

//go:noinline
func (a *Account) Owner() string { return a.owner.Get() }

//go:noinline
func (a *Account) SetOwner(v string) { a.owner.Set(v) }

// BalanceTracing exposes the balance container's tracing switch.
func (a *Account) BalanceTracing() fieldtrace.Controller { return a.balance }

// OwnerTracing exposes the owner container's tracing switch.
func (a *Account) OwnerTracing() fieldtrace.Controller { return a.owner }

// Deposit adds amount to the balance: one read and one write.
func (a *Account) Deposit(amount int) {
	a.SetBalance(a.Balance() + amount)
}
