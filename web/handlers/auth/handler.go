// Package auth is the login flow. In live mode the user's credentials are
// verified against Saras and the returned Saras token is stored on the user
// row for the per-user token manager; in stub mode the check is local.
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/security"
	"trackai.dev/trackai/trackai/store"
	"trackai.dev/trackai/web/common"
)

const tokenLifetimeSeconds = 8 * 60 * 60

type Endpoint struct {
	users     store.UserStore
	cfg       saras.Config
	jwtSecret string
	log       *zap.Logger
}

func Register(r *gin.RouterGroup, users store.UserStore, cfg saras.Config, jwtSecret string, log *zap.Logger) {
	endpoint := &Endpoint{users: users, cfg: cfg, jwtSecret: jwtSecret, log: log}
	r.POST("/auth/login", endpoint.Login)
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (ep *Endpoint) Login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ctx := c.Request.Context()
	user, err := ep.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid credentials"))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	provider := "local"
	if ep.cfg.Mode == saras.ModeLive {
		provider = "saras"

		record, err := saras.Login(ctx, ep.cfg, user.Username, dto.Password)
		if err != nil {
			apiErr, ok := saras.AsAPIError(err)
			if ok && saras.IsAuthFailed(err) {
				c.JSON(http.StatusUnauthorized, common.NewErrorResponse(apiErr.Message))
				return
			}
			if ok {
				c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse(apiErr.Message))
				return
			}
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		user.SarasAccessToken = &record.AccessToken
		user.SarasTokenExpiresAt = &record.ExpiresAt
		if err := ep.users.Save(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
	} else if !security.CheckPassword(user.Password, dto.Password) {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid credentials"))
		return
	}

	token, err := security.CreateIdentityToken(&security.TrackAIIdentity{
		Id:       int(user.ID),
		UserName: user.Username,
		Email:    user.Email,
		Provider: provider,
	}, ep.jwtSecret, tokenLifetimeSeconds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	ep.log.Info("auth: user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("provider", provider),
	)

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"token": token,
		"user":  user,
	}))
}
