package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a schemaless JSON object stored in a collection.
type Document map[string]interface{}

// ID returns the document's id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// ResourceID returns the service-assigned _rid, or "" before the document is stored.
func (d Document) ResourceID() string {
	rid, _ := d["_rid"].(string)
	return rid
}

// GetID lets documents be listed like other resources.
func (d Document) GetID() string {
	return d.ID()
}

// ParseDocument decodes a JSON object.
func ParseDocument(raw string) (Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("document body cannot be empty")
	}
	doc := Document{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	if v, ok := doc["id"]; ok {
		if _, isString := v.(string); !isString {
			return nil, fmt.Errorf("document id must be a string")
		}
	}
	return doc, nil
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StripSystemProperties removes the properties the service assigns.
func (d Document) StripSystemProperties() Document {
	out := d.Clone()
	for k := range out {
		if strings.HasPrefix(k, "_") {
			delete(out, k)
		}
	}
	return out
}
