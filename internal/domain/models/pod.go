package models

import "time"

// PodInfo is the registration a pod posts to the directory webhook when the app is enabled on it.
// PodInfo 是应用在 Pod 上启用时，Pod 发送到目录 Webhook 的注册信息。
type PodInfo struct {
	PodID     string `json:"podId" validate:"required"`
	PodHost   string `json:"podHost" validate:"required,url"`
	AgentHost string `json:"agentHost,omitempty" validate:"omitempty,url"`
}

// PodCertificate is the pod's current JWT signing certificate.
type PodCertificate struct {
	Certificate string `json:"certificate"`
}

// AuthenticateRequest is sent to the pod to start the app authentication handshake.
// AuthToken carries the app's signed assertion when the app has a private key configured.
type AuthenticateRequest struct {
	AppToken  string `json:"appToken"`
	AuthToken string `json:"authToken,omitempty"`
}

// AuthenticateResponse pairs the app token with the token generated by the pod.
type AuthenticateResponse struct {
	AppID         string `json:"appId,omitempty"`
	AppToken      string `json:"appToken"`
	SymphonyToken string `json:"symphonyToken"`
	ExpireAt      *int64 `json:"expireAt,omitempty"`
}

// ExpiresAt converts ExpireAt (epoch milliseconds) to a time. The zero time means the pod sent none.
func (r *AuthenticateResponse) ExpiresAt() time.Time {
	if r == nil || r.ExpireAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.ExpireAt)
}

// TokenPair correlates the app token generated locally with the pod's symphony token.
type TokenPair struct {
	AppToken      string
	SymphonyToken string
}
