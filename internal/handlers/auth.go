// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/riteshop/riteshop-backend/internal/config"
	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

const oauthStateCookie = "oauth_state"

// AuthHandler drives the Google sign-in flow. The callback links or creates
// a local account and hands back the same JWT the password login issues.
type AuthHandler struct {
	userService *services.UserService
	oauthConfig *oauth2.Config
}

func NewAuthHandler(userService *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// GET /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauthConfig.AuthCodeURL(state))
}

// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		utils.UnauthorizedResponse(c, "Invalid OAuth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		utils.BadRequestResponse(c, "Missing authorization code")
		return
	}

	oauthToken, err := h.oauthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		utils.UnauthorizedResponse(c, "Failed to exchange authorization code")
		return
	}

	profile, err := h.fetchProfile(c, oauthToken)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	token, err := h.userService.FindOrCreateGoogleUser(profile.ID, profile.Name, profile.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"token": token})
}

type googleProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) fetchProfile(c *gin.Context, token *oauth2.Token) (*googleProfile, error) {
	client := h.oauthConfig.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode google profile: %w", err)
	}
	return &profile, nil
}
