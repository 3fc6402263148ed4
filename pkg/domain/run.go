package domain

import "time"

// RunRecord is the persisted outcome of one successful calculation.
type RunRecord struct {
	ID          string        `json:"id"`
	Unit        string        `json:"unit"`
	Model       string        `json:"model,omitempty"`
	Feed        MaterialState `json:"feed"`
	Product     MaterialState `json:"product"`
	GibbsEnergy float64       `json:"gibbs_energy"`
	Fingerprint string        `json:"fingerprint"`
	CreatedAt   time.Time     `json:"created_at"`

	// Sealed holds the encrypted record when it was stored through an
	// encrypting store; Feed and Product are then empty.
	Sealed string `json:"sealed,omitempty"`
}

// Clone returns a deep copy of the record.
func (r RunRecord) Clone() RunRecord {
	r.Feed = r.Feed.Clone()
	r.Product = r.Product.Clone()
	return r
}
