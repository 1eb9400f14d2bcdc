package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"swarmdon/internal/models/request_models"
	"swarmdon/internal/services"
	"swarmdon/pkg/middleware"
	"swarmdon/pkg/utils"
	"swarmdon/web"
)

// LinkController drives the Mastodon half of the account linkage.
type LinkController struct {
	accountService services.AccountServiceInterface
	sessions       *middleware.Sessions
}

func NewLinkController(accountService services.AccountServiceInterface, sessions *middleware.Sessions) *LinkController {
	return &LinkController{
		accountService: accountService,
		sessions:       sessions,
	}
}

func (lc *LinkController) GetHomeHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.HomeHTML)
}

// PostHomeHandler registers the app on the submitted instance and
// redirects the user there to authorize.
func (lc *LinkController) PostHomeHandler(c *gin.Context) {
	var form request_models.HomeForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "instance_url is required")
		return
	}

	instanceURL := strings.TrimSpace(form.InstanceURL)
	if !strings.HasPrefix(instanceURL, "https:") {
		instanceURL = "https://" + instanceURL
	}
	parsed, err := url.Parse(instanceURL)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		utils.RespondError(c, http.StatusBadRequest, "instance_url must be a valid https URL")
		return
	}
	instanceURL = strings.TrimRight(parsed.String(), "/")

	registration, err := lc.accountService.GetOrCreateRegistration(c.Request.Context(), instanceURL)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if err := lc.sessions.SetLinkCookie(c, instanceURL); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, lc.accountService.AuthorizeURL(registration))
}

// GetMastodonCallbackHandler finishes the Mastodon OAuth leg and opens
// the account session.
func (lc *LinkController) GetMastodonCallbackHandler(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		utils.RespondError(c, http.StatusBadRequest, "missing code")
		return
	}
	instanceURL, ok := lc.sessions.LinkInstance(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "missing instance_url cookie")
		return
	}

	account, err := lc.accountService.CompleteMastodonCallback(c.Request.Context(), instanceURL, code)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if err := lc.sessions.SetCookie(c, account.InstanceURL, account.MastodonID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/swarm")
}
