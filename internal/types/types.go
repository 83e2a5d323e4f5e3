// Package types defines the shared data model for the capture-to-action
// pipeline: raw inputs, extracted entities, intent results, actions and
// their execution lifecycle.
package types

import "time"

// InputSource identifies where a captured snippet came from.
type InputSource string

const (
	SourceVoice      InputSource = "voice"
	SourceChat       InputSource = "chat"
	SourceManual     InputSource = "manual"
	SourceScreenshot InputSource = "screenshot"
	SourceLocation   InputSource = "location"
)

// RawInput is a captured snippet of text. It is immutable once captured and
// passed by value into the pipeline; ownership stays with the capture layer.
// ID is assigned on entry to the pipeline when the capture layer left it
// empty.
type RawInput struct {
	ID     string      `json:"id,omitempty"`
	Text   string      `json:"text"`
	Source InputSource `json:"source"`
}

// EntityType tags an extracted entity.
type EntityType string

const (
	EntityDate         EntityType = "date"
	EntityTime         EntityType = "time"
	EntityLocation     EntityType = "location"
	EntityAmount       EntityType = "amount"
	EntityPerson       EntityType = "person"
	EntityRelationship EntityType = "relationship"
)

// Entity is a typed, confidence-scored fact extracted from free text.
// Value is the normalized form (ISO date, numeric string, free text);
// Raw is the matched substring. Entities are never mutated after creation.
type Entity struct {
	ID         string            `json:"id"`
	Type       EntityType        `json:"type"`
	Raw        string            `json:"raw"`
	Value      string            `json:"value"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Metadata keys used by specific entity types.
const (
	MetaCurrency     = "currency"
	MetaLatitude     = "latitude"
	MetaLongitude    = "longitude"
	MetaRelationship = "relationship"
	MetaTimeOfDay    = "time_of_day"
)

// Intent is the single best-guess purpose category of a captured text.
type Intent string

const (
	IntentCalendar Intent = "calendar"
	IntentShopping Intent = "shopping"
	IntentWork     Intent = "work"
	IntentSocial   Intent = "social"
	IntentPayment  Intent = "payment"
	IntentOther    Intent = "other"
)

// Intents lists all labels in canonical order. Iteration order matters:
// fallback scoring breaks ties by first label encountered.
func Intents() []Intent {
	return []Intent{IntentCalendar, IntentShopping, IntentWork, IntentSocial, IntentPayment, IntentOther}
}

// ScoredIntent pairs an intent label with a confidence score.
type ScoredIntent struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// IntentResult is the classifier output: the winning label, its confidence
// and up to two ranked alternatives.
type IntentResult struct {
	Intent       Intent         `json:"intent"`
	Confidence   float64        `json:"confidence"`
	Alternatives []ScoredIntent `json:"alternatives,omitempty"`
	UsedFallback bool           `json:"used_fallback"`
}

// ActionCategory keys the Action tagged union.
type ActionCategory string

const (
	CategoryCalendar      ActionCategory = "calendar"
	CategoryPayment       ActionCategory = "payment"
	CategoryShopping      ActionCategory = "shopping"
	CategoryTask          ActionCategory = "task"
	CategoryNavigation    ActionCategory = "navigation"
	CategoryCommunication ActionCategory = "communication"
	CategoryNotification  ActionCategory = "notification"
)

// ActionStatus tracks an action through its execution lifecycle. Status only
// advances forward; cancellation is the single allowed exit ramp.
type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusReady     ActionStatus = "ready"
	StatusExecuting ActionStatus = "executing"
	StatusCompleted ActionStatus = "completed"
	StatusFailed    ActionStatus = "failed"
	StatusCancelled ActionStatus = "cancelled"
)

// Priority is a 1-5 scale, 5 most urgent.
type Priority int

const (
	PriorityLowest  Priority = 1
	PriorityLow     Priority = 2
	PriorityMedium  Priority = 3
	PriorityHigh    Priority = 4
	PriorityHighest Priority = 5
)

// Action is a typed, executable proposal derived from intent and entities.
// Fields holds category-specific values keyed by the contract in
// RequiredFields/OptionalFields; an action carries only its own category's
// fields.
type Action struct {
	ID          string            `json:"id"`
	Category    ActionCategory    `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Entities    []Entity          `json:"entities,omitempty"`
	Status      ActionStatus      `json:"status"`
	Priority    Priority          `json:"priority"`
	CreatedAt   time.Time         `json:"created_at"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	ExecutedAt  *time.Time        `json:"executed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Entity returns the first attached entity of the given type, if any.
func (a *Action) Entity(t EntityType) (Entity, bool) {
	for _, e := range a.Entities {
		if e.Type == t {
			return e, true
		}
	}
	return Entity{}, false
}

// RequiredFields returns the required field names for a category. Unknown
// categories return nil.
func RequiredFields(c ActionCategory) []string {
	return requiredFields[c]
}

// OptionalFields returns the optional field names for a category.
func OptionalFields(c ActionCategory) []string {
	return optionalFields[c]
}

var requiredFields = map[ActionCategory][]string{
	CategoryCalendar:      {"title", "startTime", "endTime"},
	CategoryPayment:       {"recipient", "amount", "currency"},
	CategoryShopping:      {"productName", "price", "currency"},
	CategoryTask:          {"title", "deadline"},
	CategoryNavigation:    {"destination"},
	CategoryCommunication: {"recipient", "commType"},
	CategoryNotification:  {"notificationTitle", "notificationBody"},
}

var optionalFields = map[ActionCategory][]string{
	CategoryCalendar:      {"location", "attendees", "reminderMinutes"},
	CategoryPayment:       {"memo", "deepLink"},
	CategoryShopping:      {"productUrl", "targetPrice"},
	CategoryTask:          {"description", "tags", "parentTaskId"},
	CategoryNavigation:    {"latitude", "longitude", "transportMode"},
	CategoryCommunication: {"messageTemplate", "scheduledTime"},
	CategoryNotification:  {"scheduledTime", "priority"},
}

// CommTypes enumerates valid communication action transports.
var CommTypes = []string{"email", "sms", "chat", "call"}

// ActionResult is the executor's structured outcome for one action. It is
// always returned, never thrown, including for validation failures.
type ActionResult struct {
	ActionID  string            `json:"action_id"`
	Success   bool              `json:"success"`
	Data      map[string]string `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ExecutionStage names a phase of the executor state machine as seen by
// status observers.
type ExecutionStage string

const (
	StagePreparing ExecutionStage = "preparing"
	StageExecuting ExecutionStage = "executing"
	StageVerifying ExecutionStage = "verifying"
	StageCompleted ExecutionStage = "completed"
	StageFailed    ExecutionStage = "failed"
)

// ExecutionStatus is a per-action progress projection owned by the executor's
// in-memory status table. It is never persisted.
type ExecutionStatus struct {
	Stage   ExecutionStage `json:"stage"`
	Percent int            `json:"percent"`
	Message string         `json:"message,omitempty"`
}

// TemporalAnalysis is the temporal reasoner output: an optional deadline,
// an urgency level 1-5 and an optional recommended reminder time.
type TemporalAnalysis struct {
	Deadline        *time.Time `json:"deadline,omitempty"`
	Urgency         int        `json:"urgency"`
	OptimalReminder *time.Time `json:"optimal_reminder,omitempty"`
}

// Relationship labels produced by the relationship extractor.
type Relationship string

const (
	RelFriend    Relationship = "friend"
	RelColleague Relationship = "colleague"
	RelFamily    Relationship = "family"
	RelSchool    Relationship = "school"
	RelOther     Relationship = "other"
)
