package maintenance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"latch/internal/identity"
	"latch/internal/models"
)

const previewLen = 120

type Handler struct {
	log       *Log
	startedAt time.Time
}

func NewHandler(log *Log) *Handler {
	return &Handler{log: log, startedAt: time.Now().UTC()}
}

func RegisterRoutes(r *mux.Router, h *Handler, auth mux.MiddlewareFunc) {
	sub := r.PathPrefix("/maintenance").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("", h.Command).Methods(http.MethodPost)
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	OK      bool      `json:"ok"`
	Time    time.Time `json:"time"`
	Command string    `json:"command"`
	Result  any       `json:"result"`
}

// POST /maintenance — командная ручка. Неизвестная команда — не ошибка
// транспорта: 200 с текстом в result.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // пустое тело = команда по умолчанию

	cmd := strings.ToLower(strings.TrimSpace(req.Command))
	if cmd == "" {
		cmd = "status"
	}

	now := time.Now().UTC()
	var result any
	switch cmd {
	case "status":
		result = map[string]any{
			"status":     "ok",
			"started_at": h.startedAt,
			"uptime":     now.Sub(h.startedAt).Round(time.Second).String(),
		}
	case "logs":
		result = h.log.List()
	case "env":
		result = envReport()
	default:
		result = fmt.Sprintf("unknown command: %s", cmd)
	}

	actor := "unknown"
	if p := identity.FromContext(r.Context()); p != nil && p.Email != "" {
		actor = p.Email
	}
	h.log.Record(Entry{Time: now, Actor: actor, Command: cmd, ResultPreview: preview(result)})

	models.WriteJSON(w, http.StatusOK, commandResponse{OK: true, Time: now, Command: cmd, Result: result})
}

// envReport перечисляет окружение процесса; значения секретоносных
// переменных (KEY/SECRET/TOKEN/PASSWORD) не раскрываются.
func envReport() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if secretName(name) {
			out = append(out, name+"=[redacted]")
			continue
		}
		out = append(out, kv)
	}
	sort.Strings(out)
	return out
}

func secretName(name string) bool {
	n := strings.ToUpper(name)
	for _, marker := range []string{"KEY", "SECRET", "TOKEN", "PASSWORD", "DSN"} {
		if strings.Contains(n, marker) {
			return true
		}
	}
	return false
}

func preview(result any) string {
	b, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	if r := []rune(string(b)); len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return string(b)
}
