package model

// Database is a named container of collections.
// dbs/{DATABASE_ID}
type Database struct {
	Resource    `bson:",inline"`
	Collections string `json:"_colls,omitempty" bson:"_colls,omitempty"`
	Users       string `json:"_users,omitempty" bson:"_users,omitempty"`
}

// NewDatabase returns a database definition carrying only its id.
func NewDatabase(id string) *Database {
	return &Database{Resource: Resource{ID: id}}
}
