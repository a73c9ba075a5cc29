package opt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyMaybe(t *testing.T) {
	var status Maybe[int]
	assert.False(t, status.IsDefined())
	assert.Equal(t, 0, status.Value())
	assert.Equal(t, 200, status.OrElse(200))
	assert.Equal(t, "[none]", status.String())
	assert.Equal(t, status, None[int]())
}

func TestDefinedMaybe(t *testing.T) {
	status := Some(401)
	assert.True(t, status.IsDefined())
	assert.Equal(t, 401, status.Value())
	assert.Equal(t, 401, status.OrElse(200))
	assert.Equal(t, "401", status.String())

	assert.True(t, Some("").IsDefined())
	assert.Equal(t, "2s", Some(2*time.Second).String())
}

func TestMaybeFromJSON(t *testing.T) {
	var expect struct {
		Status Maybe[int]    `json:"status"`
		Body   Maybe[string] `json:"body"`
		Extra  Maybe[string] `json:"extra"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status": 204, "body": null}`), &expect))
	assert.Equal(t, Some(204), expect.Status)
	assert.False(t, expect.Body.IsDefined())
	assert.False(t, expect.Extra.IsDefined())

	assert.Error(t, json.Unmarshal([]byte(`{"status": "no"}`), &expect))
}
