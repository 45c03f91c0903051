package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
	"ValueZone/internal/zone"
)

func testAnalysis(t *testing.T) *model.Analysis {
	t.Helper()
	bands, err := zone.ComputeZones(100)
	require.NoError(t, err)
	return &model.Analysis{
		Symbol:         "SPY",
		LatestBaseline: 100,
		Window:         200,
		Bands:          bands,
		Assignment:     zone.Assign(180, bands),
		Indicators:     model.Indicators{High52w: 200, Low52w: 150, Position52w: 0.6, WeeklyRSI: 61.2, DeviationPct: 80},
		AnalyzedAt:     time.Date(2026, 4, 3, 22, 0, 0, 0, time.UTC),
	}
}

func TestFormatAnalysis(t *testing.T) {
	msg := FormatAnalysis(testAnalysis(t))

	assert.Contains(t, msg, "<b>SPY</b> | 2026-04-03")
	assert.Contains(t, msg, "Price: 180.00")
	assert.Contains(t, msg, "200W MA: 100.00 (+80.0%)")
	assert.Contains(t, msg, "Zone: 🟡 <b>Fair Value</b>")
	assert.Contains(t, msg, "250.00 and above")
	assert.Contains(t, msg, "▶ 🟡 Fair Value: 150.00 - 200.00")
	assert.Contains(t, msg, "Weekly RSI(14): 61.2")
	assert.Less(t, strings.Index(msg, "Very Expensive"), strings.Index(msg, "Very Cheap"))
}

func TestFormatZoneTransition(t *testing.T) {
	down := FormatZoneTransition(&model.ZoneTransition{
		Symbol: "QQQ", From: model.ZoneFairValue, To: model.ZoneCheap, Price: 350,
		At: time.Date(2026, 1, 9, 22, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, down, "cheaper")
	assert.Contains(t, down, "Fair Value → 🟢 Cheap")

	up := FormatZoneTransition(&model.ZoneTransition{Symbol: "QQQ", From: model.ZoneCheap, To: model.ZoneExpensive})
	assert.Contains(t, up, "more expensive")
}

func TestFormatWatchlist(t *testing.T) {
	msg := FormatWatchlist([]string{"SPY", "GLD"}, map[string]model.Zone{"SPY": model.ZoneCheap})
	assert.Contains(t, msg, "SPY: 🟢 Cheap")
	assert.Contains(t, msg, "GLD: -")
	assert.Equal(t, "Watchlist is empty.", FormatWatchlist(nil, nil))
}

func TestFormatError_Escapes(t *testing.T) {
	msg := FormatError("<A>", errors.New("x < y"))
	assert.Equal(t, "⚠️ <b>&lt;A&gt;</b>: x &lt; y", msg)
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	err := n.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestPoll_DispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /zone spy "}},{"update_id":8}]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies = append(replies, body["text"])
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("T", "1", "")
	n.APIBase = srv.URL

	var cmds []string
	next, err := n.poll(context.Background(), srv.Client(), 7, func(_ context.Context, cmd string) string {
		cmds = append(cmds, cmd)
		return "ok:" + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/zone spy"}, cmds)
	assert.Equal(t, []string{"ok:/zone spy"}, replies)
}
