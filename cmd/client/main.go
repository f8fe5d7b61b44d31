package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/wfunc/cashflow-game/internal/client"
	"github.com/wfunc/cashflow-game/internal/game"
	"go.uber.org/zap"
)

// ptermNotifier 把引擎提示渲染到终端
type ptermNotifier struct{}

func (ptermNotifier) Info(msg string)    { pterm.Info.Println(msg) }
func (ptermNotifier) Success(msg string) { pterm.Success.Println(msg) }
func (ptermNotifier) Error(msg string)   { pterm.Error.Println(msg) }

// authResponse 登录/注册响应
type authResponse struct {
	User struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Nickname string `json:"nickname"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

func main() {
	var (
		serverURL = flag.String("server", "http://127.0.0.1:8080", "服务器地址")
		roomID    = flag.Uint("room", 0, "房间ID（0表示创建新房间）")
	)
	flag.Parse()

	printTitle()

	username, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("用户名").Show()
	password, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("密码").WithMask("*").Show()

	auth, err := loginOrRegister(*serverURL, username, password)
	if err != nil {
		pterm.Error.Printfln("登录失败: %v", err)
		os.Exit(1)
	}
	pterm.Success.Printfln("欢迎, %s", auth.User.Nickname)

	room := *roomID
	if room == 0 {
		room, err = createRoom(*serverURL, auth.AccessToken, username+"的房间")
	} else {
		err = joinRoom(*serverURL, auth.AccessToken, room)
	}
	if err != nil {
		pterm.Error.Printfln("进入房间失败: %v", err)
		os.Exit(1)
	}
	pterm.Info.Printfln("已进入房间 %d", room)

	runGame(*serverURL, auth, room)
}

func printTitle() {
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Cash", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("flow", pterm.FgLightWhite.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(title)
	}
}

// runGame 主游戏循环
func runGame(serverURL string, auth *authResponse, roomID uint) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := zap.NewNop()
	api := client.NewHTTPRoomService(serverURL, auth.AccessToken, 10*time.Second)
	userID := strconv.FormatUint(uint64(auth.User.ID), 10)

	session := client.NewSessionState(userID, roomID, api, client.NewEmitter(), ptermNotifier{}, log)
	machine := client.NewTurnMachine(session, log)
	deals := client.NewDealController(session, ptermNotifier{}, log)

	session.Events().On(client.EventChange, func(payload interface{}) {
		if snap, ok := payload.(*game.Snapshot); ok {
			renderBoard(snap, userID)
		}
	})
	session.Events().On(client.EventTurnStarted, func(interface{}) {
		pterm.Success.Println("轮到你了！")
	})
	session.Events().On(client.EventDealPending, func(payload interface{}) {
		if deal, ok := payload.(*game.PendingDeal); ok && deal.Card != nil {
			pterm.Info.Printfln("交易牌面: %s（首付 %d / 月收入 %d）",
				deal.Card.Name, deal.Card.DownPayment, deal.Card.Income)
		}
	})

	_ = session.Refresh(ctx)
	session.StartPolling(ctx, 7*time.Second)

	for {
		options := []string{"掷骰并移动", "结束回合", "选择小买卖", "选择大买卖", "购买", "放弃交易", "申请信贷", "刷新", "退出"}
		choice, _ := pterm.DefaultInteractiveSelect.WithOptions(options).Show("操作")

		var err error
		switch choice {
		case "掷骰并移动":
			err = machine.RollDice(ctx)
		case "结束回合":
			err = machine.EndTurn(ctx)
		case "选择小买卖":
			err = deals.ChooseSize(ctx, game.DealSizeSmall)
		case "选择大买卖":
			err = deals.ChooseSize(ctx, game.DealSizeBig)
		case "购买":
			err = deals.Buy(ctx)
		case "放弃交易":
			err = deals.Skip(ctx)
		case "申请信贷":
			err = deals.RequestCredit(ctx)
		case "刷新":
			err = session.Refresh(ctx)
		case "退出":
			return
		}
		if err != nil {
			pterm.Warning.Println(err.Error())
		}
	}
}

// renderBoard 渲染玩家状态表
func renderBoard(snap *game.Snapshot, userID string) {
	rows := pterm.TableData{{"玩家", "现金", "被动收入", "信贷", "位置", "状态"}}
	for _, p := range snap.Players {
		status := ""
		if p.UserID == snap.ActivePlayerID {
			status = "行动中"
		}
		name := p.Name
		if p.UserID == userID {
			name += " (我)"
		}
		rows = append(rows, []string{
			name,
			strconv.FormatInt(p.Cash, 10),
			strconv.FormatInt(p.PassiveIncome, 10),
			strconv.FormatInt(p.Credit, 10),
			strconv.Itoa(p.Position),
			status,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if snap.DiceResult != nil {
		pterm.Info.Printfln("骰子: %d", snap.DiceResult.Total)
	}
}

// loginOrRegister 登录，用户不存在时自动注册
func loginOrRegister(serverURL, username, password string) (*authResponse, error) {
	auth, err := postAuth(serverURL+"/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err == nil {
		return auth, nil
	}

	return postAuth(serverURL+"/api/v1/auth/register", map[string]string{
		"username":         username,
		"password":         password,
		"confirm_password": password,
		"nickname":         username,
	})
}

func postAuth(url string, body map[string]string) (*authResponse, error) {
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("%s", e.Message)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// createRoom 创建房间并返回房间ID
func createRoom(serverURL, token, name string) (uint, error) {
	data, _ := json.Marshal(map[string]interface{}{"name": name})
	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/rooms", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("创建房间失败: %d", resp.StatusCode)
	}

	var room struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return 0, err
	}
	return room.ID, nil
}

// joinRoom 加入指定房间
func joinRoom(serverURL, token string, roomID uint) error {
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/v1/rooms/%d/join", serverURL, roomID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("加入房间失败: %d", resp.StatusCode)
	}
	return nil
}
