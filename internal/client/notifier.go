package client

// Notifier 用户提示出口
// 展示方式（弹窗、终端、超时）由接入方决定
type Notifier interface {
	Info(message string)
	Success(message string)
	Error(message string)
}

// NopNotifier 丢弃所有提示
type NopNotifier struct{}

func (NopNotifier) Info(string)    {}
func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
