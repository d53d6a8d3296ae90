package repository

import (
	"github.com/szytools/discount-label-service/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	KV     *KVRepository
	Labels *LabelRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		KV:     NewKVRepository(database.DB),
		Labels: NewLabelRepository(database.DB),
	}
}
