package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&SetMachineStatusRequest{Kind: "drying", ID: "M1", Status: "running"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"drying","id":"M1","status":"running"}`, string(data))

	var got SetMachineStatusRequest
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, "M1", got.ID)
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "mori.v1.MoriService", ServiceDesc.ServiceName)
	assert.Equal(t, "/mori.v1.MoriService/VerifyOTP", FullMethod(MethodVerifyOTP))

	seen := map[string]bool{}
	for _, m := range ServiceDesc.Methods {
		assert.False(t, seen[m.MethodName], "duplicate method %s", m.MethodName)
		seen[m.MethodName] = true
		assert.NotNil(t, m.Handler)
	}
	assert.Len(t, seen, 26)
}
