// Package fieldtrace instruments reads and writes of individual fields and
// reports each access, with the call stack that triggered it, to an observer.
//
// A traced field is stored in a *Field[P, V] owned by the aggregate, where P
// is the aggregate (parent) type and V the field's value type. The aggregate
// exposes ordinary accessors that forward to Get and Set; those accessors are
// what a code generator would emit, and they are easy to write by hand:
//
//	type Account struct {
//	    balance *fieldtrace.Field[*Account, int]
//	}
//
//	var accountBalance = fieldtrace.NewFieldToken("balance",
//	    func(a *Account) int { return a.balance.GetUntraced() })
//
//	func NewAccount(obs fieldtrace.ErasedObserver) *Account {
//	    a := &Account{balance: fieldtrace.New[*Account](12, fieldtrace.WithErasedObserver(obs))}
//	    a.balance.SetParentResolver(fieldtrace.WeakParent(a))
//	    a.balance.SetFieldToken(accountBalance)
//	    return a
//	}
//
//	func (a *Account) Balance() int     { return a.balance.Get() }
//	func (a *Account) SetBalance(v int) { a.balance.Set(v) }
//
// Every access while tracing is enabled captures the goroutine's stack,
// resolves it with package callstack and calls the observer synchronously
// before the access completes. The frame at CallSiteIndex (2) is the code
// that called the accessor: frame 0 is Get or Set, frame 1 the accessor.
// An access whose resolved stack is not deeper than that index is not
// reported at all.
//
// Fields are not synchronized; concurrent use of one field needs the same
// external locking a plain struct field would.
package fieldtrace
