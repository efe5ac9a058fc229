package authenticator_test

import (
	"testing"
	"time"

	"github.com/questx-lab/quest-escrow/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type accessToken struct {
	Address string `json:"address"`
}

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, "abc")
	require.Nil(t, err)

	var msg string
	err = engine.Verify(token, &msg)
	require.NoError(t, err)
	require.Equal(t, "abc", msg)
}

func TestJWTStruct(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, accessToken{Address: "0xabc"})
	require.NoError(t, err)

	var got accessToken
	require.NoError(t, engine.Verify(token, &got))
	require.Equal(t, "0xabc", got.Address)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Nanosecond, "abc")
	require.Nil(t, err)

	time.Sleep(time.Second)

	var msg string
	err = engine.Verify(token, &msg)
	require.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := authenticator.NewTokenEngine("secret").Generate(time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = authenticator.NewTokenEngine("other").Verify(token, &msg)
	require.Error(t, err)
}
