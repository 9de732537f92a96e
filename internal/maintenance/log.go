package maintenance

import (
	"sync"
	"time"
)

// LogCapacity — сколько последних действий держим в памяти.
const LogCapacity = 25

type Entry struct {
	Time          time.Time `json:"time"`
	Actor         string    `json:"actor"`
	Command       string    `json:"command"`
	ResultPreview string    `json:"result_preview"`
}

// Log — ограниченный журнал административных действий, новые записи в голове.
// Живёт в рамках процесса; рестарт обнуляет журнал, это ожидаемо.
// Никаких package-level глобалов: экземпляр передаётся обработчику явно.
type Log struct {
	mu      sync.Mutex
	entries []Entry // most-recent-first
}

func NewLog() *Log { return &Log{} }

// Record кладёт запись в голову, хвост за пределами ёмкости вытесняется.
func (l *Log) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > LogCapacity {
		l.entries = l.entries[:LogCapacity]
	}
}

// List возвращает копию журнала от новых к старым.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
