package normalize

import (
	"math"
	"strings"

	"lifelog/internal/scoring"
)

const fallbackDescription = "No description provided"

var timesOfDay = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"night":     true,
}

var sentiments = map[string]bool{
	"positive": true,
	"negative": true,
	"neutral":  true,
}

// Record is the canonical shape of a log entry ready for persistence. Domain
// and activity are still names here; the saver resolves them to ids.
type Record struct {
	Content           string
	Description       string
	UserInput         string
	DomainName        string
	ActivityName      string
	MoodScore         int
	EnergyLevel       int
	ProductivityScore int
	StressLevel       *int
	SatisfactionScore *int
	Metadata          map[string]any
	Location          *string
	TimeOfDay         *string
	DurationMinutes   *int
	Amount            *float64
	Currency          *string
	Sentiment         *string
	RelatedLogIDs     []int64
	GoalID            *int64
	Priority          string
}

// Build normalizes an untrusted payload into a Record. Free text is trimmed
// and backfilled so neither description nor user input is ever empty, missing
// scores are inferred from the description, and optional fields that fail
// validation are discarded rather than rejected.
func Build(p Payload) Record {
	description := strings.TrimSpace(p.Log.Description.Value)
	userInput := strings.TrimSpace(p.Log.UserInput.Value)
	if description == "" {
		description = userInput
	}
	if description == "" {
		description = fallbackDescription
	}
	if userInput == "" {
		userInput = description
	}

	rec := Record{
		Content:           userInput,
		Description:       description,
		UserInput:         userInput,
		DomainName:        textOr(p.Classification.Domain, "General"),
		ActivityName:      textOr(p.Classification.Activity, "General"),
		MoodScore:         scoreOrInferred(p.MoodScore, description, scoring.InferMood),
		EnergyLevel:       scoreOrInferred(p.EnergyLevel, description, scoring.InferEnergy),
		ProductivityScore: scoreOrInferred(p.ProductivityScore, description, scoring.InferProductivity),
		StressLevel:       optionalScore(p.StressLevel),
		SatisfactionScore: optionalScore(p.SatisfactionScore),
		Metadata:          buildMetadata(p),
		Location:          optionalText(p.Location),
		TimeOfDay:         enumText(p.TimeOfDay, timesOfDay),
		DurationMinutes:   positiveInt(p.DurationMinutes),
		Sentiment:         enumText(p.Sentiment, sentiments),
		RelatedLogIDs:     p.RelatedLogIDs,
		GoalID:            positiveID(p.GoalID),
		Priority:          "medium",
	}

	if p.Amount.Valid && p.Amount.Value > 0 {
		amount := p.Amount.Value
		rec.Amount = &amount
		currency := textOr(p.Currency, "INR")
		rec.Currency = &currency
	}

	if p.Action != nil {
		rec.Priority = textOr(p.Action.Priority, "medium")
	}

	return rec
}

// buildMetadata merges the payload's own metadata with action and context
// annotations. A result with no keys is nil so the row stores NULL, never an
// empty object.
func buildMetadata(p Payload) map[string]any {
	meta := map[string]any{}
	for k, v := range p.Metadata {
		meta[k] = v
	}
	if p.Action != nil {
		meta["aiAction"] = textOr(p.Action.Action, "acknowledge")
		meta["aiPriority"] = textOr(p.Action.Priority, "medium")
	}
	if len(p.Context) > 0 {
		meta["aiContext"] = map[string]any(p.Context)
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func scoreOrInferred(n Number, description string, infer func(string) int) int {
	if n.Valid {
		return scoring.Clamp(n.Value)
	}
	return scoring.Clamp(float64(infer(description)))
}

func optionalScore(n Number) *int {
	if !n.Valid {
		return nil
	}
	v := scoring.Clamp(n.Value)
	return &v
}

func optionalText(t Text) *string {
	trimmed := strings.TrimSpace(t.Value)
	if !t.Valid || trimmed == "" {
		return nil
	}
	return &trimmed
}

// enumText lowercases the value and keeps it only when it names a member of
// the allowed set.
func enumText(t Text, allowed map[string]bool) *string {
	lowered := strings.ToLower(strings.TrimSpace(t.Value))
	if !t.Valid || !allowed[lowered] {
		return nil
	}
	return &lowered
}

func positiveInt(n Number) *int {
	if !n.Valid {
		return nil
	}
	v := int(math.Round(n.Value))
	if v <= 0 {
		return nil
	}
	return &v
}

func positiveID(n Number) *int64 {
	if !n.Valid || n.Value != math.Trunc(n.Value) || n.Value <= 0 {
		return nil
	}
	id := int64(n.Value)
	return &id
}

func textOr(t Text, fallback string) string {
	trimmed := strings.TrimSpace(t.Value)
	if !t.Valid || trimmed == "" {
		return fallback
	}
	return trimmed
}
