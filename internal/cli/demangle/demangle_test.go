package demangle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	cmd := NewDemangleCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestDemangleCmd(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "go escapes",
			args: []string{"gopkg.in/yaml%2ev3.Unmarshal"},
			want: "gopkg.in/yaml.v3.Unmarshal\n",
		},
		{
			name: "short go",
			args: []string{"--short", "github.com/acme/bank.(*Account[go.shape.int]).Deposit"},
			want: "bank.(*Account[...]).Deposit\n",
		},
		{
			name: "unknown passes through",
			args: []string{"???"},
			want: "???\n",
		},
		{
			name:  "stdin lines",
			stdin: "main.main\n\n  runtime.goexit  \n",
			want:  "main.main\nruntime.goexit\n",
		},
		{
			name: "parse",
			args: []string{"--parse", "github.com/acme/bank.(*Account).Deposit"},
			want: "github.com/acme/bank.(*Account).Deposit\tpackage=github.com/acme/bank receiver=*Account func=Deposit\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, execute(t, tt.stdin, tt.args...))
		})
	}
}

func TestDemangleCmd_CPlusPlus(t *testing.T) {
	out := execute(t, "", "_ZN3foo3barEv")
	assert.Equal(t, "foo::bar()\n", out)

	out = execute(t, "", "--short", "_ZN3foo3barEv")
	assert.Equal(t, "foo::bar\n", out)
}
