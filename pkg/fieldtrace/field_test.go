package fieldtrace

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/fieldtrace/internal/testutil"
	"github.com/coral-mesh/fieldtrace/pkg/callstack"
)

type account struct {
	balance *Field[*account, int]
	owner   *Field[*account, string]
}

var (
	accountBalance = NewFieldToken("balance", func(a *account) int { return a.balance.GetUntraced() })
	accountOwner   = NewFieldToken("owner", func(a *account) string { return a.owner.GetUntraced() })
	balanceField   = NewSelfToken("balance", func(a *account) *Field[*account, int] { return a.balance })
)

func newAccount(obs ErasedObserver) *account {
	a := &account{
		balance: New[*account](12, WithErasedObserver(obs), WithFieldToken(accountBalance), WithSelfToken(balanceField)),
		owner:   New[*account]("ada", WithErasedObserver(obs), WithFieldToken(accountOwner)),
	}
	a.balance.SetParentResolver(WeakParent(a))
	a.owner.SetParentResolver(WeakParent(a))
	return a
}

//go:noinline
func (a *account) Balance() int { return a.balance.Get() }

//go:noinline
func (a *account) SetBalance(v int) { a.balance.Set(v) }

//go:noinline
func (a *account) Double() { a.SetBalance(a.Balance() * 2) }

type recorded struct {
	events []ErasedAccessEvent
	selves []AnySelfToken
}

func (r *recorded) observe(e ErasedAccessEvent, self AnySelfToken) {
	r.events = append(r.events, e)
	r.selves = append(r.selves, self)
}

func TestField_WriteReadScenario(t *testing.T) {
	var rec recorded
	a := newAccount(rec.observe)

	a.SetBalance(5)
	a.Double()

	require.Len(t, rec.events, 3)
	assert.Equal(t, 10, a.balance.GetUntraced())

	first := rec.events[0]
	assert.Equal(t, KindWrite, first.Kind)
	require.NotNil(t, first.Changes)
	assert.Equal(t, 12, first.Changes.Current)
	assert.Equal(t, 5, first.Changes.New)
	assert.Equal(t, "write(int): 12 => 5", first.String())

	read := rec.events[1]
	assert.Equal(t, KindRead, read.Kind)
	assert.Equal(t, 5, read.Value)
	assert.Nil(t, read.Changes)
	assert.Equal(t, "read(int): 5", read.String())

	last := rec.events[2]
	assert.Equal(t, 5, last.Changes.Current)
	assert.Equal(t, 10, last.Changes.New)

	for i, e := range rec.events {
		assert.NotEmpty(t, e.Stack, "event %d", i)
		assert.Greater(t, len(e.Stack), CallSiteIndex)
		assert.Equal(t, CallSiteIndex, e.CallSiteIndex)
		require.True(t, e.HasParent)
		assert.Same(t, a, e.Parent)
		assert.Equal(t, "balance", e.FieldName())
		assert.Equal(t, "*fieldtrace.account", e.ParentType.String())
		assert.Equal(t, "int", e.ValueType.String())
		require.NotNil(t, rec.selves[i])
		assert.Equal(t, "balance", rec.selves[i].Name())
	}
}

func TestField_CallSiteNamesCaller(t *testing.T) {
	var rec recorded
	a := newAccount(rec.observe)

	a.SetBalance(1)
	_ = a.Balance()
	a.Double()

	require.Len(t, rec.events, 4)

	write := rec.events[0]
	assert.Contains(t, write.Stack[0].SymbolName, ".Set")
	assert.Contains(t, write.Stack[1].SymbolName, "SetBalance")
	site, ok := write.CallSite()
	require.True(t, ok)
	assert.Contains(t, site.SymbolName, "TestField_CallSiteNamesCaller")
	assert.Contains(t, site.File, "field_test.go")

	read := rec.events[1]
	assert.Contains(t, read.Stack[0].SymbolName, ".Get")
	assert.Contains(t, read.Stack[1].SymbolName, "Balance")

	for _, e := range rec.events[2:] {
		site, ok := e.CallSite()
		require.True(t, ok)
		assert.Contains(t, site.SymbolName, "Double")
	}
}

func TestField_ReadIsTransparent(t *testing.T) {
	var rec recorded
	a := newAccount(rec.observe)

	assert.Equal(t, 12, a.Balance())
	assert.Equal(t, 12, a.Balance())
	assert.Len(t, rec.events, 2)
	assert.Equal(t, 12, a.balance.GetUntraced())
}

func TestField_Disable(t *testing.T) {
	var rec recorded
	a := newAccount(rec.observe)

	a.balance.Disable()
	assert.False(t, a.balance.Enabled())

	a.SetBalance(7)
	assert.Equal(t, 7, a.Balance())
	assert.Empty(t, rec.events)

	a.balance.Disable()
	a.balance.Enable()
	a.balance.Enable()
	assert.True(t, a.balance.Enabled())

	a.SetBalance(8)
	assert.Len(t, rec.events, 1)
}

func TestField_UntracedKeepsState(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{name: "enabled", enabled: true},
		{name: "disabled", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recorded
			a := newAccount(rec.observe)
			if !tt.enabled {
				a.balance.Disable()
			}

			a.balance.SetUntraced(3)
			assert.Equal(t, 3, a.balance.GetUntraced())
			assert.Empty(t, rec.events)
			assert.Equal(t, tt.enabled, a.balance.Enabled())
		})
	}
}

func TestField_ShallowStackIsDropped(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		want   int
	}{
		{name: "empty", frames: 0, want: 0},
		{name: "accessor only", frames: 2, want: 0},
		{name: "exactly call site", frames: 3, want: 1},
		{name: "deep", frames: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unwind, capturer := testutil.FakeStack(tt.frames)
			calls := 0
			f := New[struct{}](0,
				WithUnwinder(unwind),
				WithCapturer(capturer),
				WithObserver[struct{}, int](func(AccessEvent[struct{}, int], SelfToken[struct{}, int]) { calls++ }),
			)

			f.Set(4)
			assert.Equal(t, tt.want, calls)
			assert.Equal(t, 4, f.GetUntraced(), "value stored even when not reported")
		})
	}
}

func TestField_UnresolvableFramesAreDropped(t *testing.T) {
	unwind, _ := testutil.FakeStack(8)
	none := callstack.NewCapturer(testutil.NoSymbols)

	calls := 0
	f := New[struct{}]("x",
		WithUnwinder(unwind),
		WithCapturer(none),
		WithErasedObserver(func(ErasedAccessEvent, AnySelfToken) { calls++ }),
	)

	assert.Equal(t, "x", f.Get())
	f.Set("y")
	assert.Zero(t, calls)
}

func TestField_CallSiteIndexOverride(t *testing.T) {
	unwind, capturer := testutil.FakeStack(4)
	var got AccessEvent[struct{}, int]
	f := New[struct{}](0,
		WithUnwinder(unwind),
		WithCapturer(capturer),
		WithCallSiteIndex(3),
		WithObserver[struct{}, int](func(e AccessEvent[struct{}, int], _ SelfToken[struct{}, int]) { got = e }),
	)

	f.Get()
	assert.Equal(t, 3, got.CallSiteIndex)
	site, ok := got.CallSite()
	require.True(t, ok)
	assert.Equal(t, uintptr(0x1030), site.ReturnAddr)

	g := New[struct{}](0, WithUnwinder(unwind), WithCapturer(capturer), WithCallSiteIndex(4),
		WithObserver[struct{}, int](func(AccessEvent[struct{}, int], SelfToken[struct{}, int]) { t.Fatal("unexpected event") }))
	g.Get()
}

func TestField_ParentResolvedPerAccess(t *testing.T) {
	unwind, capturer := testutil.FakeStack(5)
	resolves := 0
	var parents []string

	f := New[string](1,
		WithUnwinder(unwind),
		WithCapturer(capturer),
		WithParent(ParentResolver[string](func() (string, bool) {
			resolves++
			return fmt.Sprintf("p%d", resolves), true
		})),
		WithObserver[string, int](func(e AccessEvent[string, int], _ SelfToken[string, int]) {
			parents = append(parents, e.Parent)
		}),
	)

	f.Get()
	f.Set(2)
	f.Get()

	assert.Equal(t, 3, resolves)
	assert.Equal(t, []string{"p1", "p2", "p3"}, parents)

	f.Disable()
	f.Get()
	assert.Equal(t, 3, resolves, "no resolution while disabled")
}

func TestField_NoParent(t *testing.T) {
	unwind, capturer := testutil.FakeStack(5)
	var got ErasedAccessEvent
	f := New[*account](1, WithUnwinder(unwind), WithCapturer(capturer),
		WithErasedObserver(func(e ErasedAccessEvent, self AnySelfToken) {
			got = e
			assert.Nil(t, self)
		}))

	f.Get()
	assert.False(t, got.HasParent)
	assert.Nil(t, got.Parent)
	assert.Nil(t, got.Field)
	assert.Empty(t, got.FieldName())
}

func TestField_SelfTokenDisablesFromObserver(t *testing.T) {
	calls := 0
	a := newAccount(func(e ErasedAccessEvent, self AnySelfToken) {
		calls++
		if self == nil {
			return
		}
		ctl, ok := self.Controller(e.Parent)
		require.True(t, ok)
		ctl.Disable()
	})

	a.SetBalance(1)
	a.SetBalance(2)
	_ = a.Balance()

	assert.Equal(t, 1, calls)
	assert.False(t, a.balance.Enabled())
	assert.Equal(t, 2, a.Balance())

	// The owner field has no self token and stays enabled.
	a.owner.Set("grace")
	assert.Equal(t, 2, calls)
	assert.True(t, a.owner.Enabled())
}

func TestField_ObserverMayUseUntracedAccess(t *testing.T) {
	var a *account
	var seen []int
	a = newAccount(func(e ErasedAccessEvent, _ AnySelfToken) {
		if e.FieldName() == "balance" {
			seen = append(seen, a.balance.GetUntraced())
		}
	})

	a.SetBalance(5)
	a.SetBalance(6)

	assert.Equal(t, []int{12, 5}, seen, "writes are committed after the observer returns")
	assert.True(t, a.balance.Enabled())
}

func TestField_ObserverPanicPropagates(t *testing.T) {
	a := newAccount(func(e ErasedAccessEvent, _ AnySelfToken) {
		if e.Kind == KindWrite {
			panic("rejected")
		}
	})

	assert.PanicsWithValue(t, "rejected", func() { a.SetBalance(99) })
	assert.Equal(t, 12, a.balance.GetUntraced())
	assert.True(t, a.balance.Enabled())
}

func TestField_ZeroValue(t *testing.T) {
	var f Field[struct{}, int]
	assert.True(t, f.Enabled())

	f.Set(3)
	assert.Equal(t, 3, f.Get())
}

func TestField_SetObserver(t *testing.T) {
	unwind, capturer := testutil.FakeStack(3)
	f := New[struct{}](0, WithUnwinder(unwind), WithCapturer(capturer))

	var typed, erased int
	f.SetObserver(func(AccessEvent[struct{}, int], SelfToken[struct{}, int]) { typed++ })
	f.Get()
	f.SetErasedObserver(func(ErasedAccessEvent, AnySelfToken) { erased++ })
	f.Get()
	f.SetErasedObserver(nil)
	f.Get()
	f.SetObserver(nil)
	f.Get()

	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, erased)
}

func TestNew_Options(t *testing.T) {
	unwind, capturer := testutil.FakeStack(3)
	f := New[*account](0, Untraced(), WithUnwinder(unwind), WithCapturer(capturer), WithMaxDepth(1))
	assert.False(t, f.Enabled())

	assert.Panics(t, func() {
		New[*account](0, WithParent(StrongParent("not an account")))
	})
	assert.Panics(t, func() {
		New[*account](0, WithFieldToken(accountOwner))
	})
	assert.Panics(t, func() {
		New[*account]("x", WithObserver[*account, int](func(AccessEvent[*account, int], SelfToken[*account, int]) {}))
	})
}

type node struct {
	next    *node
	payload [8]int
}

func TestWeakParent(t *testing.T) {
	n := &node{}
	r := WeakParent(n)

	got, ok := r()
	require.True(t, ok)
	assert.Same(t, n, got)
	runtime.KeepAlive(n)

	released := weakNode()
	runtime.GC()
	runtime.GC()
	got, ok = released()
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = WeakParent[node](nil)()
	assert.False(t, ok)
	assert.Nil(t, got)
}

//go:noinline
func weakNode() ParentResolver[*node] {
	return WeakParent(&node{next: &node{}})
}

func TestStrongParent(t *testing.T) {
	p, ok := StrongParent(42)()
	assert.True(t, ok)
	assert.Equal(t, 42, p)

	p, ok = NoParent[int]()()
	assert.False(t, ok)
	assert.Zero(t, p)
}
