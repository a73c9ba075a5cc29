package apitests

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/httpclient"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Paths of the endpoints the Go tests call.
const (
	HealthPath    = "/health"
	DebugUserPath = "/debug/user"
	JWTVerifyPath = "/jwt/verify"
	UsersMePath   = "/users/me"
)

// TestUser is the user that the suite creates through the debug endpoint.
type TestUser struct {
	UUID     uuid.UUID `json:"uuid"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
	Email    string    `json:"email"`
}

// DefaultTestUser is the fixture sent to POST /debug/user.
var DefaultTestUser = TestUser{ //nolint:gochecknoglobals
	UUID:     uuid.MustParse("497dcba3-ecbf-4587-a2dd-5eb0665e6880"),
	Username: "testuser",
	Nickname: "Tester",
	Email:    "testuser@commeator.org",
}

// UserInfo is the body of GET /users/me.
type UserInfo struct {
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	EmailHash string `json:"email_hash"`
}

// EmailAddress is the part of a stored email before the first "-"; the server may append a
// suffix to keep debug users unique.
func (u UserInfo) EmailAddress() string {
	address, _, _ := strings.Cut(u.Email, "-")
	return address
}

func bearerHeaders(jwt string) httpclient.Headers {
	return httpclient.Headers{"Authorization": "Bearer " + jwt}
}

// createUserAndJWT creates DefaultTestUser and returns the token the server issued for it.
func createUserAndJWT(t *apitest.T, client *httpclient.Client) (TestUser, string) {
	t.Helper()
	user := DefaultTestUser
	body, err := json.Marshal(user)
	require.NoError(t, err)

	resp, err := client.Post(client.URL(DebugUserPath), body,
		httpclient.Headers{"Content-Type": "application/json"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), "Failed to create user:\n%s", resp.Dump())

	var jwt string
	require.NoError(t, resp.JSON(&jwt), "Expected a JWT string:\n%s", resp.Dump())
	require.NotEmpty(t, jwt, "Server returned an empty JWT")
	t.Logger().Infof("JWT token generated")
	return user, jwt
}
