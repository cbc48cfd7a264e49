package model

// Resource holds the system properties the service sets on every resource.
type Resource struct {
	ID         string `json:"id" bson:"id"`
	ResourceID string `json:"_rid,omitempty" bson:"_rid,omitempty"`
	Self       string `json:"_self,omitempty" bson:"_self,omitempty"`
	ETag       string `json:"_etag,omitempty" bson:"_etag,omitempty"`
	Timestamp  int64  `json:"_ts,omitempty" bson:"_ts,omitempty"`
}

// GetID returns the user-assigned id.
func (r Resource) GetID() string {
	return r.ID
}

// Identifiable is any listed resource.
type Identifiable interface {
	GetID() string
}

// IDs returns the ids of list in order.
func IDs[T Identifiable](list []T) []string {
	ids := make([]string, 0, len(list))
	for _, item := range list {
		ids = append(ids, item.GetID())
	}
	return ids
}
