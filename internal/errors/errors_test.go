package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrDeckExhausted, "smallDeal牌堆已空")
	suite.NotNil(err)
	suite.Equal(ErrDeckExhausted, err.Code)
	suite.Equal("牌堆和弃牌堆都已耗尽", err.Message)
	suite.Equal("smallDeal牌堆已空", err.Details)

	// 测试多个详情
	err = New(ErrInsufficientFunds, "购买失败", "需要: 1200", "可用: 1000")
	suite.Equal("购买失败; 需要: 1200; 可用: 1000", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidPosition, "位置 %d 超出范围 [0, %d)", 99, 68)
	suite.NotNil(err)
	suite.Equal(ErrInvalidPosition, err.Code)
	suite.Equal("位置 99 超出范围 [0, 68)", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrTransport)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrTransport, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError
	appErr := New(ErrDeckExhausted, "market牌堆为空")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrDeckExhausted, wrappedAppErr.Code) // 保留原始错误码
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试格式化错误包装
func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("连接超时")
	wrappedErr := Wrapf(originalErr, ErrTransport, "请求 %s 失败", "/api/v1/rooms/r1/roll")
	suite.NotNil(wrappedErr)
	suite.Equal(ErrTransport, wrappedErr.Code)
	suite.Equal("请求 /api/v1/rooms/r1/roll 失败", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrNotYourTurn)
	suite.True(Is(err, ErrNotYourTurn))
	suite.False(Is(err, ErrNotFound))
	suite.False(Is(nil, ErrNotYourTurn))

	// 标准错误不匹配任何错误码
	suite.False(Is(errors.New("普通错误"), ErrNotYourTurn))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrInsufficientFunds, GetCode(New(ErrInsufficientFunds)))
	suite.Equal(ErrUnknown, GetCode(errors.New("普通错误")))
}

// 测试Unwrap支持errors.Is链
func (suite *ErrorsTestSuite) TestUnwrap() {
	cause := errors.New("底层错误")
	err := New(ErrDatabaseQuery).WithCause(cause)
	suite.True(errors.Is(err, cause))
	suite.Equal("底层错误", err.Details)
}

// 测试错误消息格式
func (suite *ErrorsTestSuite) TestErrorString() {
	err := New(ErrNoPendingDeal)
	suite.Equal("[3001] 没有待处理的交易", err.Error())

	err = New(ErrNoPendingDeal, "房间 r1")
	suite.Equal("[3001] 没有待处理的交易: 房间 r1", err.Error())
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
