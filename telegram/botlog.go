package telegram

import (
	"fmt"
	"strings"

	"github.com/kbukum/voicescribe/logger"
)

// botLogger routes the Bot API library's log output to our logger.
type botLogger struct {
	log   *logger.Logger
	token string
}

func (l *botLogger) Println(v ...interface{}) {
	l.write(fmt.Sprintln(v...))
}

func (l *botLogger) Printf(format string, v ...interface{}) {
	l.write(fmt.Sprintf(format, v...))
}

func (l *botLogger) write(line string) {
	line = strings.TrimSuffix(line, "\n")
	if l.token != "" {
		line = strings.ReplaceAll(line, l.token, "***")
	}
	l.log.Debug(line)
}
