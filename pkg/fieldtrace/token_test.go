package fieldtrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldToken(t *testing.T) {
	a := newAccount(nil)
	a.balance.SetUntraced(40)

	assert.False(t, accountBalance.IsZero())
	assert.Equal(t, "balance", accountBalance.Name())
	assert.Equal(t, 40, accountBalance.Get(a))
	assert.Equal(t, "*fieldtrace.account.balance", accountBalance.String())

	v, ok := accountBalance.ValueOf(a)
	require.True(t, ok)
	assert.Equal(t, 40, v)

	_, ok = accountBalance.ValueOf("not an account")
	assert.False(t, ok)
}

func TestFieldToken_Identity(t *testing.T) {
	other := NewFieldToken("balance", func(a *account) int { return 0 })

	assert.True(t, accountBalance == accountBalance)
	assert.False(t, accountBalance == other, "same name, different token")

	var zero FieldToken[*account, int]
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.Name())
	assert.Zero(t, zero.Get(&account{}))
	assert.Nil(t, zero.erased())
}

func TestSelfToken(t *testing.T) {
	a := newAccount(nil)

	assert.Same(t, a.balance, balanceField.Field(a))

	ctl, ok := balanceField.Controller(a)
	require.True(t, ok)
	ctl.Disable()
	assert.False(t, a.balance.Enabled())
	ctl.Enable()
	assert.True(t, ctl.Enabled())

	_, ok = balanceField.Controller(42)
	assert.False(t, ok)

	var zero SelfToken[*account, int]
	assert.True(t, zero.IsZero())
	assert.Nil(t, zero.Field(a))
	assert.Nil(t, zero.erased())
}
