package chat

import (
	"strings"

	"botspoof-chat/internal/bot"
)

// fallbackBotLine se muestra cuando el responder contesta sin texto.
const fallbackBotLine = "I'm still learning 🤖"

// normalizeReplyText reduce el payload del responder a 1..N líneas. Una
// cadena con saltos de línea se parte descartando las líneas en blanco; si
// no sobrevive ninguna, la cadena original queda como línea única. Una lista
// no vacía se usa tal cual. Después de esto el renderizador no vuelve a
// inspeccionar formas.
func normalizeReplyText(text bot.ReplyText) []string {
	if text.IsList {
		if len(text.List) > 0 {
			return append([]string(nil), text.List...)
		}
		return []string{fallbackBotLine}
	}

	raw := text.Value
	if raw == "" {
		return []string{fallbackBotLine}
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return []string{raw}
	}
	return lines
}
