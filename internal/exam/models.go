package exam

// Text carries the two display languages a question is published in.
type Text struct {
	English string `json:"en"`
	Hindi   string `json:"hi,omitempty"`
}

// OptionKey is one of the four choice keys of a question.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// OptionKeys lists the valid keys in presentation order.
var OptionKeys = []OptionKey{OptionA, OptionB, OptionC, OptionD}

func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Option is one answer choice of a question.
type Option struct {
	Key   OptionKey `json:"key"`
	Label Text      `json:"label"`
}

// Question is one assessment item. Immutable once its test is published.
type Question struct {
	ID            string    `json:"id"`
	Prompt        Text      `json:"prompt"`
	Options       []Option  `json:"options"`
	CorrectAnswer OptionKey `json:"correct_answer,omitempty"` // stripped for students
	Explanation   *Text     `json:"explanation,omitempty"`    // stripped for students
	Section       string    `json:"section,omitempty"`
}

// Test lifecycle status.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Test is an ordered sequence of questions plus attempt parameters.
// Read-only from the session engine's perspective.
type Test struct {
	ID               string     `json:"id"`
	Title            Text       `json:"title"`
	Category         string     `json:"category,omitempty"`
	DurationMinutes  int        `json:"duration_minutes"`
	MarksPerQuestion float64    `json:"marks_per_question"`
	NegativeMarking  float64    `json:"negative_marking"`
	Status           string     `json:"status"` // draft|published
	PublishAt        int64      `json:"publish_at,omitempty"`
	ExpireAt         int64      `json:"expire_at,omitempty"`
	Questions        []Question `json:"questions"`
	CreatedAt        int64      `json:"created_at,omitempty"`
}

// DurationSeconds is the countdown budget for a timed attempt.
func (t Test) DurationSeconds() int {
	return t.DurationMinutes * 60
}

// TotalMarks is the maximum achievable score.
func (t Test) TotalMarks() float64 {
	return float64(len(t.Questions)) * t.MarksPerQuestion
}

// StripKeys removes grading material before a test is served to students.
func (t *Test) StripKeys() {
	for i := range t.Questions {
		t.Questions[i].CorrectAnswer = ""
		t.Questions[i].Explanation = nil
	}
}
