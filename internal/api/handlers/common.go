package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockinterview/internal/api/middleware"
	"github.com/yoockh/mockinterview/internal/services"
	"github.com/yoockh/mockinterview/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Code != utils.CodeInternal {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	// never leak internal details
	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// interviewID parses the :id path parameter.
func interviewID(c *gin.Context, op string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid interview id", err))
		return 0, false
	}
	return uint(id), true
}

// identity returns the caller identity chosen by middleware.Identity; zero when anonymous.
func identity(c *gin.Context) services.Identity {
	return services.Identity{
		Email: c.GetString(middleware.CtxUserEmail),
		Name:  c.GetString(middleware.CtxUserName),
	}
}
