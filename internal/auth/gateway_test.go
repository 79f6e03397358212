package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/bkral/blogsync/internal/auth"
	"github.com/bkral/blogsync/internal/identitydev"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// httptest server keepalive conns linger a moment after Close
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestGateway_RegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(identitydev.NewHandler())
	defer server.Close()

	gateway := auth.NewGateway(server.URL)

	userID, err := gateway.Register(ctx, "ann@example.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	// duplicate account is rejected with the provider message
	_, err = gateway.Register(ctx, "ann@example.com", "pw123456")
	require.Error(t, err)
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "account already exists", authErr.Message)

	// wrong password
	_, err = gateway.Login(ctx, "ann@example.com", "wrong-pass")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "wrong email or password", authErr.Message)

	loginUserID, err := gateway.Login(ctx, "ann@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, userID, loginUserID)

	require.NoError(t, gateway.Logout(ctx))

	// the remote session is gone, a second logout has nothing to end
	err = gateway.Logout(ctx)
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "no session", authErr.Message)
}

func TestGateway_LoginUnknownAccount(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(identitydev.NewHandler())
	defer server.Close()

	gateway := auth.NewGateway(server.URL)

	_, err := gateway.Login(ctx, "nobody@example.com", "pw123456")
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "wrong email or password", authErr.Message)
}
