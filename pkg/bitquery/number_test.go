package bitquery

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	var out struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
		F Number `json:"f"`
	}
	err := sonic.Unmarshal([]byte(`{"a":12.5,"b":"42","c":null,"d":"NaN","e":"-Infinity","f":"1e-3"}`), &out)
	require.NoError(t, err)

	assert.Equal(t, "12.5", out.A.String())
	assert.Equal(t, int64(42), out.B.IntPart())
	assert.False(t, out.C.Valid)
	assert.Nil(t, out.C.Ptr())
	assert.False(t, out.D.Valid)
	assert.False(t, out.E.Valid)
	assert.True(t, out.F.Valid)
	assert.Equal(t, "0.001", out.F.String())
}

func TestNumberMissingField(t *testing.T) {
	var out struct {
		A Number `json:"a"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(`{}`), &out))
	assert.False(t, out.A.Valid)
	assert.Equal(t, int64(0), out.A.IntPart())
	assert.False(t, out.A.Positive())
}
