package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
)

// Preset colors for well-known domains, keyed by lowercased name.
var domainColors = map[string]string{
	"work":    "#3B82F6",
	"health":  "#10B981",
	"finance": "#F59E0B",
	"social":  "#8B5CF6",
	"growth":  "#06B6D4",
	"leisure": "#EC4899",
	"general": "#6B7280",
}

const defaultColor = "#6366F1"

// CanonicalDomainName trims the name, upper-cases its first rune and
// lower-cases the rest: "  WORK " -> "Work". Domain uniqueness is keyed on
// this form.
func CanonicalDomainName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + strings.ToLower(trimmed[size:])
}

// DomainColor returns the preset color for a known domain name, or the default
// color for anything else.
func DomainColor(name string) string {
	if c, ok := domainColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return defaultColor
}

// Resolver maps free-text domain/activity names to stable row ids, creating
// rows on first use.
type Resolver struct {
	db *sqlx.DB
}

func NewResolver(db *sqlx.DB) *Resolver { return &Resolver{db: db} }

// ResolveDomain returns the id of the domain with the given name,
// canonicalizing first and inserting the row if absent. Lookup and creation
// are a single upsert statement, so concurrent writers racing on a brand-new
// name converge on one row; an existing row keeps its color and active flag.
func (r *Resolver) ResolveDomain(ctx context.Context, name string) (int64, error) {
	canonical := CanonicalDomainName(name)
	if canonical == "" {
		canonical = "General"
	}
	var id int64
	err := r.db.QueryRowxContext(ctx, `INSERT INTO domains (name, color, active) VALUES ($1, $2, true)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, canonical, DomainColor(canonical)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve domain %q: %w", canonical, err)
	}
	return id, nil
}

// ResolveActivity returns the id of the activity with the given name under the
// given domain, inserting if absent. Names are trimmed but keep their case;
// uniqueness is scoped to the domain, so the same activity name may exist
// independently under different domains.
func (r *Resolver) ResolveActivity(ctx context.Context, name string, domainID int64) (int64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = "General"
	}
	var id int64
	err := r.db.QueryRowxContext(ctx, `INSERT INTO activities (name, domain_id, active) VALUES ($1, $2, true)
		ON CONFLICT (domain_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, trimmed, domainID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve activity %q: %w", trimmed, err)
	}
	return id, nil
}
