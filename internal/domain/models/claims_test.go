package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodClaims_Unmarshal(t *testing.T) {
	raw := `{
		"aud": "acme-app",
		"iss": "Symphony Communication Services LLC.",
		"sub": "68719476737",
		"exp": 1893456000,
		"user": {
			"id": 68719476737,
			"emailAddress": "alice@acme.com",
			"username": "alice",
			"displayName": "Alice A",
			"companyId": "acme",
			"avatarSmallUrl": "https://acme.example.com/a.png"
		}
	}`

	var claims PodClaims
	require.NoError(t, json.Unmarshal([]byte(raw), &claims))
	require.NotNil(t, claims.User)
	assert.Equal(t, "alice", claims.User.Username)
	assert.Equal(t, PodUserID("68719476737"), claims.User.ID)
	assert.Equal(t, "acme", claims.User.CompanyID)
	assert.Equal(t, "68719476737", claims.Subject)
	assert.Equal(t, "https://acme.example.com/a.png", claims.User.AvatarSmallURL)
}

func TestPodUserID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    PodUserID
		wantErr bool
	}{
		{`"12345"`, "12345", false},
		{`12345`, "12345", false},
		{`null`, "", false},
		{`1.5`, "", true},
		{`true`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var id PodUserID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
