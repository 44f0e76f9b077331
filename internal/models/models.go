// package models defines the data model for ytbeets
package models

import (
	"time"
)

// Model is implemented by records persisted in the history database.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface shared by history stores.
//
// List criteria keys are column names; unknown keys are ignored.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
