/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireMessage struct {
	Type         string   `json:"type"`
	Participants []string `json:"participants"`
	HostOnline   bool     `json:"hostOnline"`
	You          string   `json:"you"`
	IsHost       bool     `json:"isHost"`
	Message      string   `json:"message"`
	Seed         uint32   `json:"seed"`
	Winners      []Winner `json:"winners"`
	At           string   `json:"at"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// next reads frames until one of the wanted type arrives.
func next(t *testing.T, conn *websocket.Conn, want string) wireMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	for {
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))

		if msg.Type == want {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))
}

func TestWebsocketJoinAndDraw(t *testing.T) {
	h, gm := newTestRouter(t, testConfig())

	srv := httptest.NewServer(h)
	defer srv.Close()

	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, map[string]any{"type": "joinRoom", "roomId": "WAT", "name": "Alice", "asHost": true, "hostPassword": "000794"})

	update := next(t, host, "participantsUpdate")
	assert.Equal(t, []string{"Alice"}, update.Participants)
	assert.True(t, update.HostOnline)

	joined := next(t, host, "joined")
	assert.Equal(t, "Alice", joined.You)
	assert.True(t, joined.IsHost)

	// Garbage is skipped without dropping the connection.
	require.NoError(t, guest.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, guest, map[string]any{"type": "joinRoom", "roomId": "WAT"})
	send(t, guest, map[string]any{"type": "joinRoom", "roomId": "WAT", "name": "Alice"})

	joined = next(t, guest, "joined")
	assert.True(t, strings.HasPrefix(joined.You, "Alice-"))
	assert.False(t, joined.IsHost)

	update = next(t, host, "participantsUpdate")
	assert.Equal(t, []string{"Alice", joined.You}, update.Participants)

	send(t, guest, map[string]any{"type": "drawTop7", "roomId": "WAT"})
	errMsg := next(t, guest, "errorMsg")
	assert.Equal(t, ErrNotHost.Error(), errMsg.Message)

	send(t, host, map[string]any{"type": "drawTop7", "roomId": "WAT"})

	for _, conn := range []*websocket.Conn{host, guest} {
		result := next(t, conn, "drawTop7Result")
		require.Len(t, result.Winners, 2)
		assert.Equal(t, 1, result.Winners[0].Rank)
		assert.Equal(t, 2, result.Winners[1].Rank)
		assert.NotEqual(t, result.Winners[0].Index, result.Winners[1].Index)
		assert.NotEmpty(t, result.At)
	}

	require.NoError(t, host.Close())

	update = next(t, guest, "participantsUpdate")
	assert.False(t, update.HostOnline)
	assert.Equal(t, []string{joined.You}, update.Participants)

	require.NoError(t, guest.Close())

	assert.Eventually(t, func() bool {
		return gm.lookup("WAT") == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWireFormat(t *testing.T) {
	b, err := json.Marshal(DrawResultMessage{
		Type:         "drawTop7Result",
		Seed:         42,
		Participants: []string{"A"},
		Winners:      []Winner{{Rank: 1, Index: 0, Name: "A"}},
		At:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "drawTop7Result",
		"seed": 42,
		"participants": ["A"],
		"winners": [{"rank": 1, "index": 0, "name": "A"}],
		"at": "2026-01-02T03:04:05Z"
	}`, string(b))

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"joinRoom","roomId":"WAT","name":"Bo","asHost":true,"hostPassword":"x"}`), &msg))
	assert.Equal(t, ClientMessage{Type: "joinRoom", RoomID: "WAT", Name: "Bo", AsHost: true, HostPassword: "x"}, msg)

	msg = ClientMessage{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"joinRoom","roomId":42,"name":7,"asHost":true,"hostPassword":794}`), &msg))
	assert.Equal(t, ClientMessage{Type: "joinRoom", RoomID: "42", Name: "7", AsHost: true, HostPassword: "794"}, msg)
}

func TestWebsocketNumericHostPassword(t *testing.T) {
	h, gm := newTestRouter(t, testConfig())

	srv := httptest.NewServer(h)
	defer srv.Close()

	gm.setHostPassword("nums", "1234")

	host := dial(t, srv)

	send(t, host, map[string]any{"type": "joinRoom", "roomId": "nums", "name": "Alice", "asHost": true, "hostPassword": 1234})

	joined := next(t, host, "joined")
	assert.Equal(t, "Alice", joined.You)
	assert.True(t, joined.IsHost)
}

func TestWebsocketOriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.corsOrigins = []string{"https://allowed.example"}

	h, _ := newTestRouter(t, cfg)

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, conn)

	conn, _, err = websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://allowed.example"}})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// Non-browser clients send no Origin at all.
	conn, _, err = websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
