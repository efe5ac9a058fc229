package ethutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "lower case",
			input: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
			want:  "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		},
		{
			name:  "no prefix",
			input: "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
			want:  "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		},
		{
			name:    "zero address",
			input:   "0x0000000000000000000000000000000000000000",
			wantErr: ErrZeroAddress,
		},
		{
			name:    "too short",
			input:   "0x1234",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.input)
			require.Equal(t, tt.wantErr, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratePublicKey(t *testing.T) {
	a, err := GeneratePublicKey([]byte("secret"), []byte("escrow"))
	require.NoError(t, err)

	b, err := GeneratePublicKey([]byte("secret"), []byte("escrow"))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := GeneratePublicKey([]byte("secret"), []byte("other"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
