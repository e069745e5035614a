package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	outOnce sync.Once
	out     *log.Logger
)

func writer() *log.Logger {
	outOnce.Do(func() {
		out = log.New(os.Stdout, "", 0)
	})
	return out
}

// Emit writes one JSON log line stamped with a timestamp and level. Callers
// supply the event-specific fields; reserved keys are overwritten.
func Emit(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		writer().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	writer().Println(string(data))
}

// WriteLine emits a pre-encoded line through the shared log writer.
func WriteLine(data []byte) {
	writer().Println(string(data))
}
