package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wfunc/cashflow-game/internal/config"
	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/repository"
	"github.com/wfunc/cashflow-game/internal/service"
)

// newTestRouter 组装完整的路由和服务栈（内存数据库，无websocket）
func newTestRouter() *Router {
	gin.SetMode(gin.TestMode)

	db := repository.SetupTestDB()
	cfg := &config.Config{
		Game: config.GameConfig{
			MaxPlayers:    8,
			StartingCash:  3000,
			PassGoBonus:   200,
			TurnTime:      120 * time.Second,
			DiceSides:     6,
			InnerTrackLen: 24,
		},
	}
	cfg.Security.JWT.Secret = "integration-test-secret"
	cfg.Security.JWT.ExpireHours = 1
	cfg.Security.JWT.RefreshHours = 2

	services := service.NewServices(db, cfg, nil, zap.NewNop())
	return NewRouter(db, services, nil, zap.NewNop())
}

// doJSON 发起一次JSON请求
func doJSON(router *Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.Engine().ServeHTTP(w, req)
	return w
}

// registerUser 注册用户并返回访问令牌
func registerUser(t *testing.T, router *Router, username string) string {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":         username,
		"password":         "password123",
		"confirm_password": "password123",
		"nickname":         username,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestAPIHealthCheck(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestAPIAuthRequired(t *testing.T) {
	router := newTestRouter()

	t.Run("无令牌访问房间接口", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/rooms", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("伪造令牌被拒绝", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/rooms", "not-a-real-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("注册参数校验", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "ab", // 用户名太短
			"password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPIGameFlow(t *testing.T) {
	router := newTestRouter()

	aliceToken := registerUser(t, router, "alice")
	bobToken := registerUser(t, router, "bob")

	// 建房：房主自动入座
	w := doJSON(router, http.MethodPost, "/api/v1/rooms", aliceToken, map[string]interface{}{
		"name":        "现金流测试房",
		"max_players": 4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var room struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	require.NotZero(t, room.ID)
	base := fmt.Sprintf("/api/v1/rooms/%d", room.ID)

	t.Run("第二名玩家加入并准备", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, base+"/join", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(router, http.MethodPost, base+"/ready", bobToken, map[string]bool{"ready": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("未开局前查询状态返回404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, base+"/state", aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	var snap game.Snapshot
	t.Run("开局", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, base+"/start", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

		assert.Equal(t, "playing", snap.Status)
		assert.Len(t, snap.Players, 2)
		assert.Equal(t, int64(3000), snap.Players[0].Cash)
		assert.Positive(t, snap.Version)
	})

	t.Run("非当前回合玩家掷骰被拒", func(t *testing.T) {
		// 首位入座的 alice 先行动
		w := doJSON(router, http.MethodPost, base+"/roll", bobToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.NotZero(t, errResp.ErrCode)
	})

	t.Run("掷骰并移动", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, base+"/roll", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		require.NotNil(t, snap.DiceResult)
		assert.True(t, snap.HasRolled)

		// 同一回合内重复掷骰冲突
		w = doJSON(router, http.MethodPost, base+"/roll", aliceToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = doJSON(router, http.MethodPost, base+"/move", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	})

	t.Run("按版本号轮询返回304", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, base+"/state", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var latest game.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))

		path := fmt.Sprintf("%s/state?version=%d", base, latest.Version)
		w = doJSON(router, http.MethodGet, path, bobToken, nil)
		assert.Equal(t, http.StatusNotModified, w.Code)

		// 旧版本号则返回完整快照
		path = fmt.Sprintf("%s/state?version=%d", base, latest.Version-1)
		w = doJSON(router, http.MethodGet, path, bobToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("结束回合轮转到下一位", func(t *testing.T) {
		// 有待处理交易时先放弃，避免回合结束前挂着交易
		if snap.PendingDeal != nil && snap.PendingDeal.Stage == game.DealStageChoosingSize {
			w := doJSON(router, http.MethodPost, base+"/deals/choose", aliceToken, map[string]string{"size": "small"})
			if w.Code == http.StatusOK {
				w = doJSON(router, http.MethodPost, base+"/deals/resolve", aliceToken, map[string]string{"action": "skip"})
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			}
		}

		w := doJSON(router, http.MethodPost, base+"/end-turn", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var after game.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
		assert.NotEqual(t, snap.ActivePlayerID, after.ActivePlayerID)
		assert.False(t, after.HasRolled)
		assert.Greater(t, after.Version, snap.Version)
	})
}
