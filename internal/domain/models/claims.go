package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// PodClaims are the claims of the user JWT a pod issues to the app front end.
// PodClaims 是 Pod 向应用前端签发的用户 JWT 的声明。
type PodClaims struct {
	jwt.RegisteredClaims
	// User carries the pod user's profile.
	// User 携带 Pod 用户的个人资料。
	User *PodUser `json:"user,omitempty"`
}

// PodUser is the user profile embedded in a pod JWT.
type PodUser struct {
	ID             PodUserID `json:"id"`
	EmailAddress   string    `json:"emailAddress,omitempty"`
	Username       string    `json:"username"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	DisplayName    string    `json:"displayName,omitempty"`
	Title          string    `json:"title,omitempty"`
	Company        string    `json:"company,omitempty"`
	CompanyID      string    `json:"companyId,omitempty"`
	Location       string    `json:"location,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	AvatarSmallURL string    `json:"avatarSmallUrl,omitempty"`
}

// PodUserID is a pod user identifier. Pods emit it either as a JSON number or a string.
type PodUserID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PodUserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PodUserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("user id %s is not an integer", n)
	}
	*id = PodUserID(n.String())
	return nil
}

func (id PodUserID) String() string { return string(id) }
