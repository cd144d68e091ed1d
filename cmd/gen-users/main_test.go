package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/service"
	"shop-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteUsers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeUsers(&buf, 3))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"username", "password"},
		{"user1", "password1"},
		{"user2", "password2"},
		{"user3", "password3"},
	}, rows)
}

func TestRegisterUsersSkipsExisting(t *testing.T) {
	s, err := store.NewStore("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := service.NewAuthService(s, auth.NewTokenManager("k", time.Minute), auth.PlaintextVerifier{})
	ctx := context.Background()

	created, err := registerUsers(ctx, svc, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = registerUsers(ctx, svc, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	_, err = svc.Login(ctx, "user3", "password3")
	assert.NoError(t, err)
}
