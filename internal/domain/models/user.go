package models

// User is a local account of the app. PodUserID links it to the pod user that
// authenticated with a JWT.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PodUserID   string `json:"podUserId,omitempty"`
}
