package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/o3dstudio/config"
	"github.com/princinho/o3dstudio/database"
	"github.com/princinho/o3dstudio/dto"
	"github.com/princinho/o3dstudio/utils"
)

func Login(users UserFinder, auth config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), body.Email)
		if err != nil {
			if !errors.Is(err, database.ErrUserNotFound) {
				_ = c.Error(err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		accessToken, err := utils.GenerateAccessToken(auth.JWTSecret, user.ID.Hex(), user.Email, string(user.Role), auth.AccessTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": accessToken,
			"expires_in":   int(auth.AccessTTL().Seconds()),
		})
	}
}
