package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/application/service"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
	"github.com/turtacn/appauth/pkg/utils"
)

const (
	maxPodIDBody = 4 << 10

	responseValid   = "Valid"
	responseInvalid = "Invalid"
)

var jsStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "<", `\x3c`)

// AuthHandler serves the endpoints the app front end calls during authentication.
type AuthHandler struct {
	authService  service.AuthAppService
	loginService service.LoginAppService
	appID        string
	logger       logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService, loginService service.LoginAppService, appID string, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginService: loginService,
		appID:        appID,
		logger:       log.WithComponent("AuthHandler"),
	}
}

// Authenticate starts a handshake with the pod named in the body and returns the app token as text.
// The body is either {"podId": "..."} or the bare pod ID.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	req, err := readPodID(c.Request.Body)
	if err != nil {
		sendError(c, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		sendError(c, err)
		return
	}

	appToken, err := h.authService.InitiateHandshake(c.Request.Context(), req.PodID)
	if err != nil {
		sendError(c, err)
		return
	}
	c.String(http.StatusOK, appToken)
}

// ValidateTokens answers "Valid" with 200 or "Invalid" with 401.
func (h *AuthHandler) ValidateTokens(c *gin.Context) {
	var req dto.ValidateTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, errors.ErrInvalidRequest("body must be a JSON object with appToken and symphonyToken").WithCause(err))
		return
	}

	if !h.authService.ValidateTokens(c.Request.Context(), req.AppToken, req.SymphonyToken) {
		c.String(http.StatusUnauthorized, responseInvalid)
		return
	}
	c.String(http.StatusOK, responseValid)
}

// Login verifies the pod-issued user JWT and greets the user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, errors.ErrInvalidRequest("body must be a JSON object with jwt and podId").WithCause(err))
		return
	}

	resp, err := h.loginService.Login(c.Request.Context(), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AppConfig serves the app ID as a script the front end includes before bootstrapping.
func (h *AuthHandler) AppConfig(c *gin.Context) {
	body := fmt.Sprintf("var appId = '%s';", jsStringEscaper.Replace(h.appID))
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(body))
}

func readPodID(body io.Reader) (*dto.AuthenticateRequest, error) {
	if body == nil {
		return &dto.AuthenticateRequest{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxPodIDBody))
	if err != nil {
		return nil, errors.ErrInvalidRequest("cannot read request body").WithCause(err)
	}
	raw = bytes.TrimSpace(raw)

	req := &dto.AuthenticateRequest{}
	switch {
	case len(raw) == 0:
	case raw[0] == '{':
		if err := json.Unmarshal(raw, req); err != nil {
			return nil, errors.ErrInvalidRequest("malformed JSON body").WithCause(err)
		}
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &req.PodID); err != nil {
			return nil, errors.ErrInvalidRequest("malformed JSON string").WithCause(err)
		}
	default:
		req.PodID = string(raw)
	}
	req.PodID = strings.TrimSpace(req.PodID)
	return req, nil
}
