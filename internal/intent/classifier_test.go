package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeerrors "suri/internal/errors"
	"suri/internal/types"
)

// stubBackend is a scripted primary tier for cascade tests.
type stubBackend struct {
	available bool
	scores    map[types.Intent]float64
	err       error
	calls     int
}

func (s *stubBackend) Name() string                   { return "stub" }
func (s *stubBackend) Available(context.Context) bool { return s.available }
func (s *stubBackend) Predict(context.Context, string) (map[types.Intent]float64, error) {
	s.calls++
	return s.scores, s.err
}

func TestClassifyEmptyText(t *testing.T) {
	c := NewClassifier()
	result := c.Classify(context.Background(), "")

	assert.Equal(t, types.IntentOther, result.Intent)
	assert.LessOrEqual(t, result.Confidence, 0.3)
	assert.True(t, result.UsedFallback)
}

func TestFallbackDeterministicWeddingText(t *testing.T) {
	c := NewClassifier() // no primary tier at all

	for i := 0; i < 3; i++ {
		result := c.Classify(context.Background(), "결혼식 초대합니다")
		assert.Equal(t, types.IntentSocial, result.Intent)
		assert.GreaterOrEqual(t, result.Confidence, 0.7)
		assert.True(t, result.UsedFallback)
	}
}

func TestFallbackBaselineOnNoKeywordMatch(t *testing.T) {
	c := NewClassifier()
	result := c.Classify(context.Background(), "무언가 알 수 없는 내용")

	assert.Equal(t, types.IntentOther, result.Intent)
	assert.InDelta(t, 0.3, result.Confidence, 0.0001)
}

func TestFallbackWinnerFormula(t *testing.T) {
	c := NewClassifier()
	// Two payment keyword hits: 송금 + 계좌 → 0.5 + 2*0.1 = 0.7.
	result := c.Classify(context.Background(), "계좌로 송금 부탁해")

	assert.Equal(t, types.IntentPayment, result.Intent)
	assert.InDelta(t, 0.7, result.Confidence, 0.0001)
}

func TestFallbackConfidenceCapped(t *testing.T) {
	c := NewClassifier()
	result := c.Classify(context.Background(), "결혼식 결혼 생일 축하 초대 친구 장례식 돌잔치 모친상")

	assert.Equal(t, types.IntentSocial, result.Intent)
	assert.LessOrEqual(t, result.Confidence, 0.95)
}

func TestFallbackAlternativesRankedAndBounded(t *testing.T) {
	c := NewClassifier()
	// social + calendar + payment signals in one text.
	result := c.Classify(context.Background(), "결혼식 약속 송금")

	require.NotEmpty(t, result.Alternatives)
	assert.LessOrEqual(t, len(result.Alternatives), 2)
	for _, alt := range result.Alternatives {
		assert.Less(t, alt.Confidence, result.Confidence)
	}
}

func TestPrimaryTierWinsWhenConfident(t *testing.T) {
	primary := &stubBackend{
		available: true,
		scores: map[types.Intent]float64{
			types.IntentWork:     0.9,
			types.IntentCalendar: 0.4,
		},
	}
	c := NewClassifier(WithPrimary(primary))
	result := c.Classify(context.Background(), "아무 내용")

	assert.Equal(t, types.IntentWork, result.Intent)
	assert.InDelta(t, 0.9, result.Confidence, 0.0001)
	assert.False(t, result.UsedFallback)
	require.Len(t, result.Alternatives, 1)
	assert.Equal(t, types.IntentCalendar, result.Alternatives[0].Intent)
}

func TestCascadeOnLowPrimaryConfidence(t *testing.T) {
	primary := &stubBackend{
		available: true,
		scores:    map[types.Intent]float64{types.IntentWork: 0.4},
	}
	c := NewClassifier(WithPrimary(primary))
	result := c.Classify(context.Background(), "결혼식 초대합니다")

	assert.Equal(t, types.IntentSocial, result.Intent)
	assert.True(t, result.UsedFallback)
}

func TestCascadeOnPrimaryError(t *testing.T) {
	primary := &stubBackend{available: true, err: errors.New("model exploded")}
	c := NewClassifier(WithPrimary(primary))
	result := c.Classify(context.Background(), "결혼식 초대합니다")

	assert.Equal(t, types.IntentSocial, result.Intent)
	assert.True(t, result.UsedFallback)
}

func TestCascadeOnDegradedPrimary(t *testing.T) {
	primary := &stubBackend{available: true, err: &pipeerrors.DegradedError{
		Err:      errors.New("connection refused"),
		Fallback: "keyword",
		Message:  "model backend unavailable",
	}}
	c := NewClassifier(WithPrimary(primary))
	result := c.Classify(context.Background(), "결혼식 초대합니다")

	assert.Equal(t, types.IntentSocial, result.Intent)
	assert.True(t, result.UsedFallback)
	assert.GreaterOrEqual(t, result.Confidence, 0.7)
}

func TestKeywordBackendHonorsModelContract(t *testing.T) {
	var backend ModelBackend = NewKeywordBackend()

	assert.Equal(t, "keyword", backend.Name())
	assert.True(t, backend.Available(context.Background()))

	scores, err := backend.Predict(context.Background(), "계좌로 송금 부탁해")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, scores[types.IntentPayment], 0.0001)
	_, ok := scores[types.IntentCalendar]
	assert.False(t, ok, "labels without hits must not be scored")
}

func TestCascadeOnPrimaryUnavailable(t *testing.T) {
	primary := &stubBackend{available: false}
	c := NewClassifier(WithPrimary(primary))
	result := c.Classify(context.Background(), "결혼식 초대합니다")

	assert.Equal(t, types.IntentSocial, result.Intent)
	assert.True(t, result.UsedFallback)
	assert.Zero(t, primary.calls, "unavailable backend must not be called")
}

func TestClassifyCacheReturnsSameResult(t *testing.T) {
	primary := &stubBackend{
		available: true,
		scores:    map[types.Intent]float64{types.IntentWork: 0.9},
	}
	c := NewClassifier(WithPrimary(primary), WithCacheSize(8))

	first := c.Classify(context.Background(), "보고서 마감")
	second := c.Classify(context.Background(), "보고서 마감")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, primary.calls, "second call must be served from cache")
}

func TestClassifyAllPreservesInputOrder(t *testing.T) {
	c := NewClassifier()
	results := c.ClassifyAll(context.Background(), []string{"결혼식 초대합니다", "계좌로 송금 부탁해"})

	require.Len(t, results, 2)
	assert.Equal(t, types.IntentSocial, results[0].Intent)
	assert.Equal(t, types.IntentPayment, results[1].Intent)
}
