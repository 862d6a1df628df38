package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// InsertResult reports a create call. InsertedID is null when the call was a
// soft conflict that left the store untouched.
type InsertResult struct {
	Message    string `json:"message,omitempty"`
	InsertedID any    `json:"inserted_id"`
}

// UpdateResult reports how many rows a mutating call actually changed.
type UpdateResult struct {
	ModifiedCount int64  `json:"modified_count"`
	Message       string `json:"message,omitempty"`
}

// DeleteResult reports how many rows a delete call removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deleted_count"`
}
