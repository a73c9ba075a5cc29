package mockservice

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// UserInfo is the user representation returned by GET /users/me.
type UserInfo struct {
	UUID      uuid.UUID `json:"uuid"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	EmailHash string    `json:"email_hash"`
}

// NewUser is the body accepted by POST /debug/user. A uuid in the body is ignored; the service
// always assigns its own.
type NewUser struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

func (u NewUser) toUserInfo(id uuid.UUID) UserInfo {
	// Debug users share an address, so the stored email gets a unique suffix.
	email := u.Email + "-" + id.String()
	return UserInfo{
		UUID:      id,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     email,
		EmailHash: emailHash(u.Email),
	}
}

func emailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
