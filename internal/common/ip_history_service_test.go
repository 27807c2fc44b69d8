package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIPHistory(t *testing.T) {
	mr, client := newMiniredisClient(t)
	h := NewRedisIPHistory(client)
	ctx := context.Background()

	_, err := mr.ZAdd("CHAT:userips-7", 1, "10.0.0.1")
	require.NoError(t, err)
	_, err = mr.ZAdd("CHAT:userips-7", 2, "10.0.0.2")
	require.NoError(t, err)
	_, err = mr.SAdd("CHAT:ipusers-10.0.0.1", "7", "12", "3")
	require.NoError(t, err)
	_, err = mr.SAdd("CHAT:ipusers-10.0.0.2", "7", "12", "not-a-number")
	require.NoError(t, err)

	ips, err := h.UserIPs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.1"}, ips)

	linked, err := h.LinkedUserIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 12}, linked)

	ips, err = h.UserIPs(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, ips)
	assert.NotNil(t, ips)
}

func TestNoopIPHistory(t *testing.T) {
	var h IPHistory = NoopIPHistory{}
	ips, err := h.UserIPs(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ips)
	ids, err := h.LinkedUserIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
