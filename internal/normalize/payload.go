package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The generation collaborator declares parts of its payload "required", but
// nothing it emits is trusted: every field decodes leniently and decays to
// absent on a type mismatch instead of failing the envelope. Only a top-level
// body that is not a JSON object at all is a decode error.

// Number is a lenient numeric field. JSON numbers and numeric strings are
// accepted; anything else decays to absent.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.Value, n.Valid = 0, false
	// Decoding null into a plain float64 or string is a no-op, not an error.
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n.Value, n.Valid = f, true
		}
	}
	return nil
}

// Text is a lenient string field; non-string values decay to absent.
type Text struct {
	Value string
	Valid bool
}

func (t *Text) UnmarshalJSON(data []byte) error {
	t.Value, t.Valid = "", false
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value, t.Valid = s, true
	}
	return nil
}

// Object is a lenient JSON object field; non-objects decay to nil.
type Object map[string]any

func (o *Object) UnmarshalJSON(data []byte) error {
	*o = nil
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		*o = m
	}
	return nil
}

// IDList is a lenient list of entry ids. Elements that are integral numbers
// (or numeric strings) are kept, everything else is dropped; an empty result
// decays to nil.
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, el := range raw {
		var n Number
		_ = n.UnmarshalJSON(el)
		if n.Valid && n.Value == math.Trunc(n.Value) {
			ids = append(ids, int64(n.Value))
		}
	}
	if len(ids) > 0 {
		*l = ids
	}
	return nil
}

// LogSection carries the free-text body of a classified event.
type LogSection struct {
	Description Text `json:"description"`
	UserInput   Text `json:"user_input"`
}

func (s *LogSection) UnmarshalJSON(data []byte) error {
	type alias LogSection
	var a alias
	if err := json.Unmarshal(data, &a); err == nil {
		*s = LogSection(a)
	}
	return nil
}

// ClassificationSection names the target domain and activity.
type ClassificationSection struct {
	Domain   Text `json:"domain"`
	Activity Text `json:"activity"`
}

func (s *ClassificationSection) UnmarshalJSON(data []byte) error {
	type alias ClassificationSection
	var a alias
	if err := json.Unmarshal(data, &a); err == nil {
		*s = ClassificationSection(a)
	}
	return nil
}

// ActionSection is the generator's suggested follow-up. Its presence (even
// with garbage inside) attaches aiAction/aiPriority metadata defaults.
type ActionSection struct {
	Action   Text `json:"action"`
	Priority Text `json:"priority"`
}

func (s *ActionSection) UnmarshalJSON(data []byte) error {
	type alias ActionSection
	var a alias
	if err := json.Unmarshal(data, &a); err == nil {
		*s = ActionSection(a)
	}
	return nil
}

// Payload is the untrusted structured payload produced by the generation
// collaborator or posted directly by a client.
type Payload struct {
	Log               LogSection            `json:"log"`
	Classification    ClassificationSection `json:"classification"`
	Metadata          Object                `json:"metadata"`
	Action            *ActionSection        `json:"action"`
	Context           Object                `json:"context"`
	MoodScore         Number                `json:"moodScore"`
	EnergyLevel       Number                `json:"energyLevel"`
	ProductivityScore Number                `json:"productivityScore"`
	StressLevel       Number                `json:"stressLevel"`
	SatisfactionScore Number                `json:"satisfactionScore"`
	Location          Text                  `json:"location"`
	TimeOfDay         Text                  `json:"timeOfDay"`
	DurationMinutes   Number                `json:"durationMinutes"`
	Amount            Number                `json:"amount"`
	Currency          Text                  `json:"currency"`
	Sentiment         Text                  `json:"sentiment"`
	RelatedLogIDs     IDList                `json:"relatedLogIds"`
	GoalID            Number                `json:"goalId"`
}
