package models

// All lists every persisted model; used by the SQLite dev bootstrap and tests.
func All() []any {
	return []any{
		&Registration{},
		&Permit{},
		&Product{},
		&Notification{},
		&Message{},
	}
}
