package extract

import (
	"regexp"
	"strings"

	"suri/internal/types"
)

// locationKeywords is the curated venue/place list. The matched keyword is
// used as both the entity value and its raw text.
var locationKeywords = []string{
	"강남역", "홍대", "서울역", "잠실", "판교", "여의도",
	"스타벅스", "카페", "식당", "레스토랑", "회사", "사무실",
	"학교", "병원", "은행", "마트", "편의점", "공원",
	"영화관", "백화점", "헬스장", "미용실", "공항", "호텔",
	"예식장", "장례식장",
}

// nameStoplist filters common words that fit the hangul name pattern.
var nameStoplist = map[string]bool{
	"오늘": true, "내일": true, "모레": true, "우리": true,
	"혹시": true, "아마": true, "지금": true, "여기": true,
	"저기": true, "그때": true, "다음": true, "이번": true,
	"결혼": true, "생일": true, "회의": true, "약속": true,
	"선생": true,
}

// Honorific-suffixed hangul names, 2-4 chars plus suffix.
var nameRe = regexp.MustCompile(`([가-힣]{2,4})(씨|님|군|양|선배|선생님)`)

// relationshipKeywords maps surface forms to the closed relationship enum.
// Longer forms first so 대학 친구 wins over 친구.
var relationshipKeywords = []struct {
	keyword string
	rel     types.Relationship
}{
	{"대학 친구", types.RelSchool},
	{"대학친구", types.RelSchool},
	{"회사 동료", types.RelColleague},
	{"동료", types.RelColleague},
	{"직장 상사", types.RelColleague},
	{"어머니", types.RelFamily},
	{"아버지", types.RelFamily},
	{"엄마", types.RelFamily},
	{"아빠", types.RelFamily},
	{"가족", types.RelFamily},
	{"동생", types.RelFamily},
	{"선배", types.RelSchool},
	{"후배", types.RelSchool},
	{"친구", types.RelFriend},
}

func (e *Extractor) extractLocations(text string) []types.Entity {
	entities := make([]types.Entity, 0, 1)
	seen := make(map[string]bool)

	for _, kw := range locationKeywords {
		if !strings.Contains(text, kw) || seen[kw] {
			continue
		}
		seen[kw] = true
		entities = append(entities, newEntity(types.EntityLocation, kw, kw, 0.85))
	}
	return entities
}

func (e *Extractor) extractNames(text string) []types.Entity {
	entities := make([]types.Entity, 0, 1)
	seen := make(map[string]bool)

	for _, m := range nameRe.FindAllStringSubmatch(text, -1) {
		name := m[1] // honorific suffix stripped
		if nameStoplist[name] || seen[name] {
			continue
		}
		seen[name] = true
		entities = append(entities, newEntity(types.EntityPerson, m[0], name, 0.8))
	}
	return entities
}

func (e *Extractor) extractRelationships(text string) []types.Entity {
	entities := make([]types.Entity, 0, 1)
	claimed := make([]span, 0, 1)

	for _, rk := range relationshipKeywords {
		idx := strings.Index(text, rk.keyword)
		if idx < 0 {
			continue
		}
		s := span{idx, idx + len(rk.keyword)}
		if s.overlapsAny(claimed) {
			continue
		}
		claimed = append(claimed, s)
		ent := newEntity(types.EntityRelationship, rk.keyword, rk.keyword, 0.85)
		ent.Metadata = map[string]string{types.MetaRelationship: string(rk.rel)}
		entities = append(entities, ent)
	}
	return entities
}
