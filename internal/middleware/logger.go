package middleware

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Logger only writes request lines that are slow or failed, to keep log
// volume proportional to trouble rather than traffic.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		Output: &filteredWriter{
			dest:           os.Stdout,
			slowThreshold:  500 * time.Millisecond,
			errStatusFloor: 400,
		},
	})
}

// filteredWriter drops lines for fast, successful requests. It parses the
// "HH:MM:SS | STATUS | LATENCY | METHOD PATH" line format above.
type filteredWriter struct {
	dest           io.Writer
	slowThreshold  time.Duration
	errStatusFloor int
}

func (w *filteredWriter) Write(p []byte) (int, error) {
	parts := strings.Split(string(p), " | ")
	if len(parts) < 3 {
		return w.dest.Write(p)
	}

	status, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	if status >= w.errStatusFloor {
		return w.dest.Write(p)
	}

	if dur, err := time.ParseDuration(strings.TrimSpace(parts[2])); err == nil && dur >= w.slowThreshold {
		return w.dest.Write(p)
	}

	return len(p), nil
}
