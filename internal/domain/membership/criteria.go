package membership

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	fieldRevenueMin = "annual_revenue_min"
	fieldVisitsMin  = "total_visits_min"
	fieldVisitsMax  = "total_visits_max"
)

// TierCriteria holds the thresholds of one tier. A nil TotalVisitsMax means
// the visit range has no upper bound.
type TierCriteria struct {
	AnnualRevenueMin decimal.Decimal
	TotalVisitsMin   int
	TotalVisitsMax   *int
}

func (t TierCriteria) revenueMet(annualRevenue decimal.Decimal) bool {
	return annualRevenue.GreaterThanOrEqual(t.AnnualRevenueMin)
}

func (t TierCriteria) visitsWithin(totalVisits int) bool {
	if totalVisits < t.TotalVisitsMin {
		return false
	}
	return t.TotalVisitsMax == nil || totalVisits <= *t.TotalVisitsMax
}

// Criteria is the typed form of the administrator-managed criteria blob.
// Build it with DefaultCriteria or ParseCriteria so every tier is populated.
type Criteria struct {
	Basic    TierCriteria
	Silver   TierCriteria
	Gold     TierCriteria
	Platinum TierCriteria
	VIP      TierCriteria
}

func intPtr(v int) *int {
	return &v
}

// DefaultCriteria returns the built-in thresholds used for any tier or field
// absent from the stored document.
func DefaultCriteria() Criteria {
	return Criteria{
		Basic: TierCriteria{
			AnnualRevenueMin: decimal.Zero,
		},
		Silver: TierCriteria{
			AnnualRevenueMin: decimal.NewFromInt(5_000_000),
			TotalVisitsMin:   11,
			TotalVisitsMax:   intPtr(30),
		},
		Gold: TierCriteria{
			AnnualRevenueMin: decimal.NewFromInt(10_000_000),
			TotalVisitsMin:   31,
			TotalVisitsMax:   intPtr(99),
		},
		Platinum: TierCriteria{
			AnnualRevenueMin: decimal.NewFromInt(20_000_000),
			TotalVisitsMin:   100,
		},
		VIP: TierCriteria{
			AnnualRevenueMin: decimal.NewFromInt(50_000_000),
		},
	}
}

func (c Criteria) Tier(l Level) TierCriteria {
	switch l {
	case LevelSilver:
		return c.Silver
	case LevelGold:
		return c.Gold
	case LevelPlatinum:
		return c.Platinum
	case LevelVIP:
		return c.VIP
	default:
		return c.Basic
	}
}

func (c *Criteria) tierRef(l Level) *TierCriteria {
	switch l {
	case LevelSilver:
		return &c.Silver
	case LevelGold:
		return &c.Gold
	case LevelPlatinum:
		return &c.Platinum
	case LevelVIP:
		return &c.VIP
	default:
		return &c.Basic
	}
}

// ParseCriteria validates a stored criteria document and fills anything it
// leaves out from DefaultCriteria. Explicit null for total_visits_max removes
// the upper bound; an absent total_visits_max keeps the default bound.
func ParseCriteria(raw []byte) (Criteria, error) {
	criteria := DefaultCriteria()

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Criteria{}, apperrors.NewValidationError("", "criteria must be a JSON object")
	}

	var doc map[string]map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Criteria{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, &apperrors.ValidationError{
			Message: "criteria document is malformed",
			Cause:   err,
		})
	}

	seen := make(map[Level]string, len(doc))
	for name, fields := range doc {
		level, ok := ParseLevel(name)
		if !ok {
			return Criteria{}, apperrors.NewValidationError(name, "unknown membership tier")
		}
		if prev, dup := seen[level]; dup {
			return Criteria{}, apperrors.NewValidationError(name, fmt.Sprintf("duplicates tier %q", prev))
		}
		seen[level] = name

		if err := applyTierFields(criteria.tierRef(level), name, fields); err != nil {
			return Criteria{}, err
		}
	}

	return criteria, nil
}

func applyTierFields(tier *TierCriteria, tierName string, fields map[string]json.RawMessage) error {
	for field, value := range fields {
		path := tierName + "." + field
		isNull := bytes.Equal(bytes.TrimSpace(value), []byte("null"))

		switch field {
		case fieldRevenueMin:
			if isNull {
				continue
			}
			var d decimal.Decimal
			if err := d.UnmarshalJSON(value); err != nil {
				return apperrors.NewValidationError(path, "must be a number")
			}
			if d.IsNegative() {
				return apperrors.NewValidationError(path, "must not be negative")
			}
			tier.AnnualRevenueMin = d
		case fieldVisitsMin:
			if isNull {
				continue
			}
			n, err := parseVisitCount(value)
			if err != nil {
				return apperrors.NewValidationError(path, err.Error())
			}
			tier.TotalVisitsMin = n
		case fieldVisitsMax:
			if isNull {
				tier.TotalVisitsMax = nil
				continue
			}
			n, err := parseVisitCount(value)
			if err != nil {
				return apperrors.NewValidationError(path, err.Error())
			}
			tier.TotalVisitsMax = intPtr(n)
		default:
			return apperrors.NewValidationError(path, "unknown threshold field")
		}
	}

	if tier.TotalVisitsMax != nil && *tier.TotalVisitsMax < tier.TotalVisitsMin {
		return apperrors.NewValidationError(tierName+"."+fieldVisitsMax, "must not be below total_visits_min")
	}
	return nil
}

// maxVisitCount matches the INT total_visits column.
var maxVisitCount = decimal.NewFromInt(math.MaxInt32)

func parseVisitCount(value json.RawMessage) (int, error) {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(value); err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number")
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("must not be negative")
	}
	if d.GreaterThan(maxVisitCount) {
		return 0, fmt.Errorf("must not exceed %s", maxVisitCount)
	}
	return int(d.IntPart()), nil
}

type tierDocument struct {
	AnnualRevenueMin json.Number `json:"annual_revenue_min"`
	TotalVisitsMin   int         `json:"total_visits_min"`
	TotalVisitsMax   *int        `json:"total_visits_max"`
}

// MarshalJSON writes the normalized document, with every tier present.
func (c Criteria) MarshalJSON() ([]byte, error) {
	doc := make(map[string]tierDocument, len(Levels))
	for _, l := range Levels {
		t := c.Tier(l)
		doc[string(l)] = tierDocument{
			AnnualRevenueMin: json.Number(t.AnnualRevenueMin.String()),
			TotalVisitsMin:   t.TotalVisitsMin,
			TotalVisitsMax:   t.TotalVisitsMax,
		}
	}
	return json.Marshal(doc)
}

func (c *Criteria) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCriteria(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
