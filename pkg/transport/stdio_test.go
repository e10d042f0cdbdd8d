package transport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/richard-senior/rfef/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioTransportReadsConsecutiveRequests(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"note":"a } brace"}}
{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	tr := NewStreamTransport(in, io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "initialize", req.Method)
	assert.JSONEq(t, `{"note":"a } brace"}`, string(req.Params))

	req, err = tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "notifications/initialized", req.Method)
	assert.Nil(t, req.ID)

	_, err = tr.ReadRequest()
	assert.Equal(t, io.EOF, err)
}

func TestStdioTransportRejectsWrongVersion(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"1.0","id":1,"method":"x"}`), io.Discard)
	_, err := tr.ReadRequest()
	var rpcErr *protocol.JsonRpcError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, protocol.ErrInvalidRequest, rpcErr.Code)
}

func TestStdioTransportWritesLines(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &out)

	resp, err := protocol.NewJsonRpcResponse(map[string]int{"n": 1}, 7)
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))
	require.NoError(t, tr.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, "nope", nil, 8)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{"n":1}}`, lines[0])
	assert.Contains(t, lines[1], `"code":-32601`)
}
