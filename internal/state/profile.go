package state

import "fmt"

// Profile field keys, in interview order.
const (
	FieldMBTI                   = "mbti"
	FieldKeyStrength            = "key_strength"
	FieldGreatestWeakness       = "greatest_weakness"
	FieldOneBigChallenge        = "one_big_challenge"
	FieldMostAppreciatedValues  = "most_appreciated_values"
	FieldLeastAppreciatedValues = "least_appreciated_values"
	FieldPrinciples             = "principles"
)

// ProfileFields lists the known profile keys in interview order.
var ProfileFields = []string{
	FieldMBTI,
	FieldKeyStrength,
	FieldGreatestWeakness,
	FieldOneBigChallenge,
	FieldMostAppreciatedValues,
	FieldLeastAppreciatedValues,
	FieldPrinciples,
}

// Profile holds the user's self-description. Fields are sparse: only the
// questions answered so far carry values, and persistence merges rather
// than replaces.
type Profile struct {
	MBTI                   string `json:"mbti,omitempty"`
	KeyStrength            string `json:"key_strength,omitempty"`
	GreatestWeakness       string `json:"greatest_weakness,omitempty"`
	OneBigChallenge        string `json:"one_big_challenge,omitempty"`
	MostAppreciatedValues  string `json:"most_appreciated_values,omitempty"`
	LeastAppreciatedValues string `json:"least_appreciated_values,omitempty"`
	Principles             string `json:"principles,omitempty"`
}

// Set assigns a field by key. Unknown keys are an error.
func (p *Profile) Set(key, value string) error {
	switch key {
	case FieldMBTI:
		p.MBTI = value
	case FieldKeyStrength:
		p.KeyStrength = value
	case FieldGreatestWeakness:
		p.GreatestWeakness = value
	case FieldOneBigChallenge:
		p.OneBigChallenge = value
	case FieldMostAppreciatedValues:
		p.MostAppreciatedValues = value
	case FieldLeastAppreciatedValues:
		p.LeastAppreciatedValues = value
	case FieldPrinciples:
		p.Principles = value
	default:
		return fmt.Errorf("profile has no field %q", key)
	}
	return nil
}

// Get returns a field by key.
func (p *Profile) Get(key string) string {
	return p.ToMap()[key]
}

// ToMap returns the non-empty fields keyed by field name.
func (p *Profile) ToMap() map[string]string {
	all := map[string]string{
		FieldMBTI:                   p.MBTI,
		FieldKeyStrength:            p.KeyStrength,
		FieldGreatestWeakness:       p.GreatestWeakness,
		FieldOneBigChallenge:        p.OneBigChallenge,
		FieldMostAppreciatedValues:  p.MostAppreciatedValues,
		FieldLeastAppreciatedValues: p.LeastAppreciatedValues,
		FieldPrinciples:             p.Principles,
	}
	out := make(map[string]string)
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Merge copies the non-empty fields of other into p.
func (p *Profile) Merge(other *Profile) {
	for key, value := range other.ToMap() {
		// Keys come from ToMap, Set cannot fail.
		_ = p.Set(key, value)
	}
}
