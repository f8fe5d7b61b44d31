package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
)

// RoomService 房间服务接口（引擎消费的外部协作方）
// 每个方法都是一次请求应答往返，成功时返回最新快照
type RoomService interface {
	GetGameState(ctx context.Context, roomID uint) (*game.Snapshot, error)
	RollDice(ctx context.Context, roomID uint) (*game.Snapshot, error)
	Move(ctx context.Context, roomID uint) (*game.Snapshot, error)
	ChooseDeal(ctx context.Context, roomID uint, size game.DealSize) (*game.Snapshot, error)
	ResolveDeal(ctx context.Context, roomID uint, action game.DealAction, targetUserID string) (*game.Snapshot, error)
	TransferAsset(ctx context.Context, roomID uint, assetID, targetUserID string) (*game.Snapshot, error)
	SellAsset(ctx context.Context, roomID uint, assetID string) (*game.Snapshot, error)
	EndTurn(ctx context.Context, roomID uint) (*game.Snapshot, error)
}

// HTTPRoomService 通过HTTP访问房间服务
type HTTPRoomService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPRoomService 创建HTTP房间服务客户端
func NewHTTPRoomService(baseURL, token string, timeout time.Duration) *HTTPRoomService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRoomService{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken 更新访问令牌（刷新后调用）
func (s *HTTPRoomService) SetToken(token string) {
	s.token = token
}

func (s *HTTPRoomService) GetGameState(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/state", roomID), nil)
}

func (s *HTTPRoomService) RollDice(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/roll", roomID), nil)
}

func (s *HTTPRoomService) Move(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/move", roomID), nil)
}

func (s *HTTPRoomService) ChooseDeal(ctx context.Context, roomID uint, size game.DealSize) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/deals/choose", roomID), map[string]interface{}{
		"size": size,
	})
}

func (s *HTTPRoomService) ResolveDeal(ctx context.Context, roomID uint, action game.DealAction, targetUserID string) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/deals/resolve", roomID), map[string]interface{}{
		"action":         action,
		"target_user_id": targetUserID,
	})
}

func (s *HTTPRoomService) TransferAsset(ctx context.Context, roomID uint, assetID, targetUserID string) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/assets/transfer", roomID), map[string]interface{}{
		"asset_id":       assetID,
		"target_user_id": targetUserID,
	})
}

func (s *HTTPRoomService) SellAsset(ctx context.Context, roomID uint, assetID string) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/assets/sell", roomID), map[string]interface{}{
		"asset_id": assetID,
	})
}

func (s *HTTPRoomService) EndTurn(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/end-turn", roomID), nil)
}

// do 执行一次请求应答往返并解析快照
func (s *HTTPRoomService) do(ctx context.Context, method, path string, body interface{}) (*game.Snapshot, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransport, "序列化请求失败")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "请求房间服务失败")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "读取响应失败")
	}

	if resp.StatusCode != http.StatusOK {
		var svcErr struct {
			Code    string `json:"code"`
			ErrCode int    `json:"errCode"`
			Message string `json:"message"`
		}
		if json.Unmarshal(payload, &svcErr) == nil && svcErr.Message != "" {
			// 带业务错误码的还原成对应AppError，调用方可按码分支
			if svcErr.ErrCode != 0 {
				return nil, errors.New(errors.ErrorCode(svcErr.ErrCode), svcErr.Message)
			}
			return nil, errors.New(errors.ErrService, svcErr.Message)
		}
		return nil, errors.Newf(errors.ErrService, "房间服务返回状态码 %d", resp.StatusCode)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "解析快照失败")
	}
	return &snap, nil
}
