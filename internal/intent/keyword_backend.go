package intent

import (
	"context"
	"strings"

	"suri/internal/types"
)

// intentKeywords is the per-label keyword table for the fallback tier.
// Scoring is a pure hit count; table order never matters here, only the
// canonical label order used for tie-breaks in the classifier.
var intentKeywords = map[types.Intent][]string{
	types.IntentCalendar: {
		"약속", "회의", "미팅", "일정", "예약", "만나", "모임",
		"meeting", "schedule", "appointment",
	},
	types.IntentShopping: {
		"사야", "구매", "주문", "장바구니", "세일", "할인", "쇼핑", "사고 싶",
		"buy", "order", "sale",
	},
	types.IntentWork: {
		"업무", "보고서", "마감", "프로젝트", "출근", "야근", "제출", "발표",
		"deadline", "report", "task",
	},
	types.IntentSocial: {
		"결혼식", "결혼", "돌잔치", "장례식", "생일", "축하", "초대", "친구", "모친상",
		"wedding", "birthday", "funeral", "invite",
	},
	types.IntentPayment: {
		"송금", "이체", "결제", "입금", "보내줘", "계좌", "만 원", "원만",
		"pay", "transfer", "remit",
	},
}

// KeywordBackend is the deterministic fallback tier: it counts keyword hits
// per label and normalizes them with a fixed formula. Given identical text
// it always produces identical scores.
type KeywordBackend struct{}

// NewKeywordBackend creates the fallback scorer.
func NewKeywordBackend() *KeywordBackend {
	return &KeywordBackend{}
}

// Name implements ModelBackend.
func (b *KeywordBackend) Name() string { return "keyword" }

// Available implements ModelBackend; the keyword tier is always ready.
func (b *KeywordBackend) Available(context.Context) bool { return true }

// Predict implements ModelBackend. The winning label scores
// min(0.5 + hits*0.1, 0.95); labels with no hits score 0.
func (b *KeywordBackend) Predict(_ context.Context, text string) (map[types.Intent]float64, error) {
	hits := b.CountHits(text)

	scores := make(map[types.Intent]float64, len(hits))
	for label, n := range hits {
		if n == 0 {
			continue
		}
		scores[label] = winnerScore(n)
	}
	return scores, nil
}

// CountHits returns the raw keyword hit count per label.
func (b *KeywordBackend) CountHits(text string) map[types.Intent]int {
	lower := strings.ToLower(text)
	hits := make(map[types.Intent]int, len(intentKeywords))
	for label, keywords := range intentKeywords {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		hits[label] = n
	}
	return hits
}

// winnerScore normalizes a hit count for the winning label.
func winnerScore(hits int) float64 {
	s := 0.5 + float64(hits)*0.1
	if s > 0.95 {
		return 0.95
	}
	return s
}

// alternativeScore is the lighter-weight formula used for ranked
// alternatives; it stays strictly below any winner score.
func alternativeScore(hits int) float64 {
	s := 0.3 + float64(hits)*0.05
	if s > 0.5 {
		return 0.5
	}
	return s
}
