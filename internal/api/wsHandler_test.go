package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWs(t *testing.T, env *testEnv, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWs(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWsRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without token: resp %v, err %v", resp, err)
	}
}

func TestWsRosterCommands(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(adminName)
	alice := env.login("Alice")
	bob := env.login("Bob")
	game := env.createGame(admin.Token, 1)
	gameID := game.ID.String()

	watcher := dialWs(t, env, bob.Token)
	if err := watcher.WriteJSON(map[string]interface{}{"Type": "Subscribe", "GameId": gameID}); err != nil {
		t.Fatal(err)
	}
	if reply := readWs(t, watcher); reply["Type"] != "Subscribe" || reply["Result"] != true {
		t.Fatalf("Subscribe reply = %v", reply)
	}

	player := dialWs(t, env, alice.Token)
	if err := player.WriteJSON(map[string]interface{}{"Type": "JoinGame", "GameId": gameID}); err != nil {
		t.Fatal(err)
	}
	if reply := readWs(t, player); reply["Result"] != true || reply["Game"] == nil {
		t.Fatalf("JoinGame reply = %v", reply)
	}

	push := readWs(t, watcher)
	if push["Type"] != "RosterChanged" || push["Action"] != "joined" || push["UserId"] != alice.UserId {
		t.Fatalf("push = %v", push)
	}
	if names, _ := push["Names"].(map[string]interface{}); names[alice.UserId] != "Alice" {
		t.Errorf("push names = %v", push["Names"])
	}

	// The game is full for Bob.
	if err := watcher.WriteJSON(map[string]interface{}{"Type": "JoinGame", "GameId": gameID}); err != nil {
		t.Fatal(err)
	}
	reply := readWs(t, watcher)
	if reply["Result"] != false || reply["Retry"] != false || reply["Error"] != "game is full" {
		t.Errorf("full JoinGame reply = %v", reply)
	}

	if err := player.WriteJSON(map[string]interface{}{"Type": "Dance"}); err != nil {
		t.Fatal(err)
	}
	if reply := readWs(t, player); reply["Error"] != "unknown message type" {
		t.Errorf("unknown type reply = %v", reply)
	}

	if err := player.WriteJSON(map[string]interface{}{"Type": "JoinGame", "GameId": 42}); err != nil {
		t.Fatal(err)
	}
	if reply := readWs(t, player); reply["Error"] != "invalid game id" {
		t.Errorf("bad id reply = %v", reply)
	}
}
