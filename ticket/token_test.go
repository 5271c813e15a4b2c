package ticket

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := generateToken()
	require.NoError(t, err)

	// 32 random bytes, hex encoded
	assert.Len(t, token, 64)

	other, err := generateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestRenderCode(t *testing.T) {
	token, err := generateToken()
	require.NoError(t, err)

	code, err := renderCode(token)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(code, "data:image/png;base64,"))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(code, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
