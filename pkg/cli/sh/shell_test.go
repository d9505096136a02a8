package sh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type named struct {
	Name string `json:"name"`
}

func (n named) String() string { return "named " + n.Name }

func TestFormat(t *testing.T) {
	cases := []struct {
		name   string
		res    interface{}
		asJSON bool
		out    string
	}{
		{"string", "ok", false, "ok"},
		{"stringer", named{"a"}, false, "named a"},
		{"other", 42, false, "42"},
		{"json", named{"a"}, true, `{"name":"a"}`},
		{"json string", "ok", true, `"ok"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := Format(c.res, c.asJSON)
			require.NoError(t, err)
			require.Equal(t, c.out, out)
		})
	}
	_, err := Format(make(chan int), true)
	require.Error(t, err)
}

func TestNewBenchDefaults(t *testing.T) {
	b, err := NewBench()
	require.NoError(t, err)
	require.Equal(t, "door", b.Door.Config.UnitID())
	require.Equal(t, "key", b.Key.Config.UnitID())
}
