package domain

// Evidence is arbitrary structured proof attached to a Finding
// (raw attributes, computed metrics, error text).
type Evidence map[string]any

// Finding is the verdict for one evaluated resource.
type Finding struct {
	ResourceID     *string  `json:"resourceId"`     // nil for check-level findings
	Compliant      bool     `json:"compliant"`      // verdict
	ResourceExists bool     `json:"resourceExists"` // false when there was nothing to evaluate
	Evidence       Evidence `json:"evidence"`
}

// NewFinding creates a finding for an existing resource.
func NewFinding(resourceID string, compliant bool, evidence Evidence) Finding {
	if evidence == nil {
		evidence = Evidence{}
	}
	return Finding{
		ResourceID:     &resourceID,
		Compliant:      compliant,
		ResourceExists: true,
		Evidence:       evidence,
	}
}

// CheckLevelFinding creates a finding that is not bound to a single resource,
// e.g. an access denial on the listing call.
func CheckLevelFinding(compliant bool, evidence Evidence) Finding {
	if evidence == nil {
		evidence = Evidence{}
	}
	return Finding{
		Compliant:      compliant,
		ResourceExists: true,
		Evidence:       evidence,
	}
}

// AbsentFinding records that no resource of the evaluated kind exists.
// compliant is false only for controls that require the resource to exist.
func AbsentFinding(compliant bool, evidence Evidence) Finding {
	if evidence == nil {
		evidence = Evidence{}
	}
	return Finding{
		Compliant:      compliant,
		ResourceExists: false,
		Evidence:       evidence,
	}
}

// ID returns the resource identifier or an empty string for check-level findings.
func (f Finding) ID() string {
	if f.ResourceID == nil {
		return ""
	}
	return *f.ResourceID
}
