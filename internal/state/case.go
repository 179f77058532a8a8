package state

import (
	"crypto/sha256"
	"encoding/hex"
)

// ReflectionCase is one completed case reflection. CaseID is the sha256
// hex of the summary, so re-storing a case with the same summary yields
// the same id; records are appended regardless, and readers treat equal
// ids as revisions of the same case. Distinct summaries colliding is not
// a handled condition.
type ReflectionCase struct {
	CaseID           string   `json:"case_id"`
	Summary          string   `json:"summary"`
	Detail           string   `json:"detail"`
	PrincipleApplied string   `json:"principle_applied"`
	DetailAnalysis   string   `json:"detail_analysis"`
	NewPrinciple     string   `json:"new_principle"`
	Dialog           []string `json:"dialog"`
	SessionID        string   `json:"session_id"`
}

// NewCaseID derives the case id from the case summary.
func NewCaseID(summary string) string {
	sum := sha256.Sum256([]byte(summary))
	return hex.EncodeToString(sum[:])
}
