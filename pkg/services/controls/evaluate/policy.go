package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
)

// StringList accepts both the scalar and the array form IAM allows for Action and Resource.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var item string
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = StringList{item}
	return nil
}

type Statement struct {
	Effect   string     `json:"Effect"`
	Action   StringList `json:"Action"`
	Resource StringList `json:"Resource"`

	// Raw is the statement as written in the document, reported as evidence.
	Raw map[string]any `json:"-"`
}

// WildcardStatement reports whether an Allow statement grants "*" as an action or a resource.
func WildcardStatement(s Statement) bool {
	if s.Effect != "Allow" {
		return false
	}
	return slices.Contains(s.Action, "*") || slices.Contains(s.Resource, "*")
}

// ParsePolicyDocument decodes a policy document as returned by IAM (URL-encoded JSON).
// Statement may be a single object or an array.
func ParsePolicyDocument(document string) ([]Statement, error) {
	decoded, err := url.PathUnescape(document)
	if err != nil {
		decoded = document
	}

	var doc struct {
		Statement json.RawMessage `json:"Statement"`
	}
	if err := json.Unmarshal([]byte(decoded), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}

	raw := bytes.TrimSpace(doc.Statement)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		raw = append(append([]byte{'['}, raw...), ']')
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse policy statements: %w", err)
	}

	statements := make([]Statement, 0, len(items))
	for _, item := range items {
		var s Statement
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("failed to parse policy statement: %w", err)
		}
		if err := json.Unmarshal(item, &s.Raw); err != nil {
			return nil, fmt.Errorf("failed to parse policy statement: %w", err)
		}
		statements = append(statements, s)
	}
	return statements, nil
}
