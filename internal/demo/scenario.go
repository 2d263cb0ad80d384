package demo

import (
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
)

// Result is the final state after Run.
type Result struct {
	Balance int
	Owner   string
}

// Run drives an account through a fixed sequence of accesses: the balance
// goes 12 -> 5 -> 10, a deposit reads and writes it once more, and the owner
// is renamed. With untraced set, every access bypasses the observer.
func Run(obs fieldtrace.ErasedObserver, untraced bool, opts ...fieldtrace.Option) Result {
	if untraced {
		opts = append(opts, fieldtrace.Untraced())
	}
	a := NewAccount("ada", obs, opts...)

	v := 5
	a.SetBalance(v)
	a.SetBalance(v * 2)
	a.Deposit(1)
	a.SetOwner(a.Owner() + " lovelace")

	return Result{
		Balance: a.balance.GetUntraced(),
		Owner:   a.owner.GetUntraced(),
	}
}
