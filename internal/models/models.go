package models

// All lists every entity in migration order.
func All() []any {
	return []any{&User{}, &Interview{}, &Question{}, &Response{}}
}
