package output

import "shopqa/internal/domain/entity"

// UserCatalog exposes the configured test accounts.
type UserCatalog interface {
	Usernames() []string
	CommonPassword() string
	Records() entity.DataSet
}
