// sanitize очищает пользовательский текст (комментарии, био, теги, заголовки) от разметки.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict удаляет все теги; содержимое script/style отбрасывается целиком.
// *bluemonday.Policy безопасна для конкурентного использования после настройки.
var strict = bluemonday.StrictPolicy()

// Text возвращает текст без HTML-разметки и крайних пробелов.
// Сущности раскодируются обратно: хранится обычный текст, экранирование — забота клиента.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Tags нормализует список тегов: очистка, нижний регистр, без пустых и дублей.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		t = strings.ToLower(Text(t))
		if t == "" {
			continue
		}

		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
