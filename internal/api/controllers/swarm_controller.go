package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swarmdon/internal/models/request_models"
	"swarmdon/internal/services"
	"swarmdon/pkg/utils"
)

// SwarmController drives the Swarm half of the linkage and receives
// push events.
type SwarmController struct {
	accountService services.AccountServiceInterface
	relayService   services.RelayServiceInterface
}

func NewSwarmController(accountService services.AccountServiceInterface, relayService services.RelayServiceInterface) *SwarmController {
	return &SwarmController{
		accountService: accountService,
		relayService:   relayService,
	}
}

// GetSwarmHandler sends the session's user to Foursquare to authorize.
// Requires the account session set by the Mastodon callback.
func (sc *SwarmController) GetSwarmHandler(c *gin.Context) {
	c.Redirect(http.StatusFound, sc.accountService.SwarmAuthenticateURL())
}

// GetSwarmCallbackHandler finishes the Swarm OAuth leg, completing the
// account pair.
func (sc *SwarmController) GetSwarmCallbackHandler(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		utils.RespondError(c, http.StatusBadRequest, "missing code")
		return
	}

	err := sc.accountService.CompleteSwarmCallback(
		c.Request.Context(),
		c.GetString("instance_url"),
		c.GetString("mastodon_id"),
		code,
	)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "done!")
}

// PostSwarmPushHandler is the push webhook. It answers 200 with an
// empty body no matter what: a malformed or unauthorized payload must
// never make the sender retry.
func (sc *SwarmController) PostSwarmPushHandler(c *gin.Context) {
	var form request_models.SwarmPushForm
	if err := c.ShouldBind(&form); err == nil {
		sc.relayService.HandlePush(c.Request.Context(), form.Checkin, form.Secret)
	}
	c.Status(http.StatusOK)
}
