package extract

import (
	"regexp"
	"strings"

	"suri/internal/types"
)

var (
	// Mobile prefixes 010/011/016/017/018/019, optional separators.
	phoneRe = regexp.MustCompile(`01[016789][-.\s]?\d{3,4}[-.\s]?\d{4}`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

func (e *Extractor) extractPhones(text string) []types.Entity {
	seen := make(map[string]bool)
	entities := make([]types.Entity, 0, 1)

	for _, m := range phoneRe.FindAllString(text, -1) {
		normalized := normalizePhone(m)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		entities = append(entities, newEntity(types.EntityPerson, m, normalized, 0.95))
	}
	return entities
}

func (e *Extractor) extractEmails(text string) []types.Entity {
	seen := make(map[string]bool)
	entities := make([]types.Entity, 0, 1)

	for _, m := range emailRe.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		entities = append(entities, newEntity(types.EntityPerson, m, lower, 0.95))
	}
	return entities
}

// normalizePhone reduces a matched number to the canonical dashed form.
func normalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	switch len(digits) {
	case 11:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	case 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	default:
		return digits
	}
}
