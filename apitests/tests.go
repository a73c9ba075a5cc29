package apitests

import (
	"net/http"

	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/httpclient"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/require"
)

func testHealth(t *apitest.T, client *httpclient.Client) error {
	resp, err := client.Get(client.URL(HealthPath), nil)
	if err != nil {
		return err
	}
	m.In(t).Assert(resp, httpclient.HasStatus(http.StatusOK))
	return nil
}

func testVerifyJWT(t *apitest.T, client *httpclient.Client) error {
	_, jwt := createUserAndJWT(t, client)

	resp, err := client.Get(client.URL(JWTVerifyPath), bearerHeaders(jwt))
	if err != nil {
		return err
	}
	require.Equal(t, http.StatusOK, resp.StatusCode(), "Failed to verify JWT:\n%s", resp.Dump())
	require.Equal(t, "true", resp.Text(), "JWT verification failed:\n%s", resp.Dump())

	t.Logger().Infof("JWT verification succeeded")
	return nil
}

func testGetMyUser(t *apitest.T, client *httpclient.Client) error {
	user, jwt := createUserAndJWT(t, client)

	resp, err := client.Get(client.URL(UsersMePath), bearerHeaders(jwt))
	if err != nil {
		return err
	}
	require.Equal(t, http.StatusOK, resp.StatusCode(), "Failed to get user:\n%s", resp.Dump())

	var info UserInfo
	require.NoError(t, resp.JSON(&info), "Invalid user info:\n%s", resp.Dump())
	require.Equal(t, user.Username, info.Username, "Username does not match")
	require.Equal(t, user.Nickname, info.Nickname, "Nickname does not match")
	require.Equal(t, user.Email, info.EmailAddress(), "Email does not match")

	t.Logger().Infof("User info matches")
	return nil
}
