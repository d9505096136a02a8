package radio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/bench"
)

func TestConfig(t *testing.T) {
	b, err := bench.NewDefault()
	require.NoError(t, err)
	res, err := Config(b, nil)
	require.NoError(t, err)
	configs := res.(Configs)
	require.Len(t, configs, 2)
	require.True(t, configs[0].Configured)
	require.Equal(t, "door", configs[0].Unit)
	require.Equal(t, "receive", configs[0].Role)
	require.Equal(t, "transmit", configs[1].Role)
	require.Equal(t, "4242", configs[0].Address)
	require.Equal(t, 64, configs[1].Channel)
	require.Contains(t, configs.String(), "key: ")
}

func TestTXRX(t *testing.T) {
	b, err := bench.NewDefault()
	require.NoError(t, err)

	res, err := RX(b, nil)
	require.NoError(t, err)
	require.Nil(t, res.(*Packet).Payload)
	require.Equal(t, "door: no data", res.(*Packet).String())

	res, err = TX(b, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, res.(*Packet).Payload)
	require.True(t, res.(*Packet).Valid)

	res, err = RX(b, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, res.(*Packet).Payload)
	require.True(t, res.(*Packet).Valid)

	_, err = TX(b, []string{"1", "0x02", "3", "4", "5", "6"})
	require.NoError(t, err)
	res, err = RX(b, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, res.(*Packet).Payload)
	require.False(t, res.(*Packet).Valid)

	_, err = TX(b, []string{"1", "2"})
	require.Error(t, err)
}

func TestParseBytes(t *testing.T) {
	buf, err := ParseBytes([]string{"0", "255", "0x10"})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 255, 16}, buf)
	_, err = ParseBytes([]string{"256"})
	require.Error(t, err)
	_, err = ParseBytes([]string{"x"})
	require.Error(t, err)
}
