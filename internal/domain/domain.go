package domain

import "time"

type Advert struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreationTime time.Time `json:"creation_time"`
	Owner        string    `json:"owner"`
}

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldOwner       = "owner"
)

// MutableFields lists the columns a PATCH may touch, in the order they are written.
var MutableFields = []string{FieldTitle, FieldDescription, FieldOwner}

func IsMutableField(name string) bool {
	for _, f := range MutableFields {
		if f == name {
			return true
		}
	}
	return false
}

// FieldUpdate is a single column assignment applied by a PATCH.
type FieldUpdate struct {
	Field string
	Value string
}
