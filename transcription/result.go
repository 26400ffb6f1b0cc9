package transcription

import (
	"strings"

	"github.com/tidwall/gjson"
)

// resultText extracts the "text" field of a decoder result.
func resultText(result string) string {
	return strings.TrimSpace(gjson.Get(result, "text").String())
}
