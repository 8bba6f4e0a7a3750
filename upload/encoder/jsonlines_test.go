package encoder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONLines_Encode(t *testing.T) {
	enc := NewJSONLines[event]()
	var buf bytes.Buffer

	require.NoError(t, enc.Encode(event{Name: "a", Count: 1}, &buf))
	require.NoError(t, enc.Encode(event{Name: "b", Count: 2}, &buf))
	require.NoError(t, enc.Finalize(&buf))

	assert.Equal(t, "{\"name\":\"a\",\"count\":1}\n{\"name\":\"b\",\"count\":2}\n", buf.String())
}

func TestJSONLines_MarshalError(t *testing.T) {
	enc := NewJSONLines[chan int]()
	var buf bytes.Buffer

	err := enc.Encode(make(chan int), &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "a failed encode must not write partial output")
}
