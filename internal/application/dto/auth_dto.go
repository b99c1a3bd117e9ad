// Package dto holds the request and response bodies of the HTTP API.
package dto

import "github.com/turtacn/appauth/internal/domain/models"

// AuthenticateRequest starts a handshake with a pod. The endpoint also accepts the pod ID as a bare text body.
type AuthenticateRequest struct {
	PodID string `json:"podId" validate:"required"`
}

// ValidateTokensRequest carries both halves of a handshake. Neither field is validated
// here; missing tokens simply fail validation.
type ValidateTokensRequest struct {
	AppToken      string `json:"appToken"`
	SymphonyToken string `json:"symphonyToken"`
}

// LoginRequest carries the pod-issued user JWT and the pod that issued it.
type LoginRequest struct {
	JWT   string `json:"jwt" validate:"required"`
	PodID string `json:"podId" validate:"required"`
}

// LoginResponse greets the verified user. User is set when the pod user is linked to a local account.
type LoginResponse struct {
	Message  string          `json:"message"`
	Username string          `json:"username"`
	PodUser  *models.PodUser `json:"podUser,omitempty"`
	User     *models.User    `json:"user,omitempty"`
}

// PodInfoRequest is the body of the pod directory webhook.
type PodInfoRequest struct {
	PodID     string `json:"podId" validate:"required"`
	PodHost   string `json:"podHost" validate:"required,url"`
	AgentHost string `json:"agentHost,omitempty" validate:"omitempty,url"`
}

// ToModel converts the request into a directory entry.
func (r *PodInfoRequest) ToModel() models.PodInfo {
	return models.PodInfo{PodID: r.PodID, PodHost: r.PodHost, AgentHost: r.AgentHost}
}
