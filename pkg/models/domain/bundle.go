package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EvidenceBundle is the aggregate of all reports of one run group.
// Reports keep the order in which they were added; each name is written once.
type EvidenceBundle struct {
	names   []string
	reports map[string]Report
}

func NewEvidenceBundle() *EvidenceBundle {
	return &EvidenceBundle{reports: make(map[string]Report)}
}

// Add inserts the report of a check. A name can only be added once.
func (b *EvidenceBundle) Add(name string, report Report) error {
	if name == "" {
		return fmt.Errorf("check name cannot be empty")
	}
	if _, exists := b.reports[name]; exists {
		return fmt.Errorf("report for check %q is already in the bundle", name)
	}
	b.names = append(b.names, name)
	b.reports[name] = report
	return nil
}

func (b *EvidenceBundle) Get(name string) (Report, bool) {
	r, ok := b.reports[name]
	return r, ok
}

// Names returns check names in insertion order.
func (b *EvidenceBundle) Names() []string {
	return append([]string(nil), b.names...)
}

func (b *EvidenceBundle) Len() int {
	return len(b.names)
}

// MarshalJSON writes the bundle as an object whose key order follows insertion order.
func (b *EvidenceBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.reports[name])
		if err != nil {
			return nil, fmt.Errorf("failed to encode report %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
