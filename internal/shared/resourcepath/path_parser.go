package resourcepath

import (
	"strings"

	"cosmos-admin/internal/shared/errors"
)

// Feed segment names of the resource hierarchy.
const (
	Databases   = "dbs"
	Collections = "colls"
	Documents   = "docs"
	Offers      = "offers"
)

// maxIDLength is the service's limit on resource ids.
const maxIDLength = 255

// PathInfo represents a parsed resource link.
type PathInfo struct {
	DatabaseID   string
	CollectionID string
	DocumentID   string
	IsFeed       bool
	Segments     []string
}

// DatabaseLink builds dbs/{db}.
func DatabaseLink(databaseID string) string {
	return Databases + "/" + databaseID
}

// CollectionLink builds dbs/{db}/colls/{coll}.
func CollectionLink(databaseID, collectionID string) string {
	return DatabaseLink(databaseID) + "/" + Collections + "/" + collectionID
}

// DocumentLink builds dbs/{db}/colls/{coll}/docs/{doc}.
func DocumentLink(databaseID, collectionID, documentID string) string {
	return CollectionLink(databaseID, collectionID) + "/" + Documents + "/" + documentID
}

// OfferLink builds offers/{rid}.
func OfferLink(offerRID string) string {
	return Offers + "/" + offerRID
}

// Split returns the non-empty segments of a link.
func Split(link string) []string {
	parts := strings.Split(link, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Parse decodes a name-based link such as dbs/Contoso/colls/Orders.
func Parse(link string) (*PathInfo, error) {
	segments := Split(link)
	if len(segments) == 0 {
		return nil, errors.NewValidationError("resource link cannot be empty")
	}

	names := []string{Databases, Collections, Documents}
	info := &PathInfo{Segments: segments, IsFeed: len(segments)%2 == 1}
	for i, segment := range segments {
		if i%2 == 0 {
			if i/2 >= len(names) || segment != names[i/2] {
				return nil, errors.NewValidationError("invalid resource link").
					WithDetail("provided_link", link).
					WithDetail("position", i).
					WithCause(errors.ErrInvalidPath)
			}
			continue
		}
		if err := ValidateID(segment); err != nil {
			return nil, err
		}
		switch i {
		case 1:
			info.DatabaseID = segment
		case 3:
			info.CollectionID = segment
		case 5:
			info.DocumentID = segment
		}
	}
	return info, nil
}

// ValidateID checks an id against the service's naming rules.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("Empty name provided")
	}
	if len(id) > maxIDLength {
		return errors.NewValidationError("id is too long").
			WithDetail("id", id).
			WithDetail("max_length", maxIDLength)
	}
	if strings.HasSuffix(id, " ") {
		return errors.NewValidationError("id cannot end with a space").WithDetail("id", id)
	}
	if strings.ContainsAny(id, `/\?#`) {
		return errors.NewValidationError("id cannot contain '/', '\\', '?' or '#'").WithDetail("id", id)
	}
	return nil
}
