package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/cashflow-game/internal/errors"
)

// ErrorResponse 错误响应
// ErrCode 是业务错误码，客户端据此还原AppError
type ErrorResponse struct {
	Code    string `json:"code"`
	ErrCode int    `json:"errCode,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务错误码到HTTP状态码的映射
var statusByCode = map[errors.ErrorCode]int{
	errors.ErrInvalidParam:      http.StatusBadRequest,
	errors.ErrGameNotStarted:    http.StatusNotFound,
	errors.ErrNotYourTurn:       http.StatusConflict,
	errors.ErrAlreadyRolled:     http.StatusConflict,
	errors.ErrNotRolledYet:      http.StatusConflict,
	errors.ErrDeckExhausted:     http.StatusConflict,
	errors.ErrRoomFull:          http.StatusConflict,
	errors.ErrNotInRoom:         http.StatusForbidden,
	errors.ErrInsufficientFunds: http.StatusConflict,
	errors.ErrNoPendingDeal:     http.StatusConflict,
	errors.ErrDealStage:         http.StatusConflict,
	errors.ErrNotDealOwner:      http.StatusForbidden,
	errors.ErrAssetNotFound:     http.StatusNotFound,
	errors.ErrTransferTarget:    http.StatusBadRequest,
	errors.ErrCreditDenied:      http.StatusConflict,
}

// respondError 把服务层错误翻译为HTTP响应
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorResponse{
		Code:    "GAME_ERROR",
		ErrCode: int(code),
		Message: err.Error(),
	})
}

// bindError 请求体解析失败的统一响应
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_REQUEST",
		Message: "请求参数错误",
		Details: err.Error(),
	})
}
