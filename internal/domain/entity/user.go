package entity

// User is the serialized profile written by the login flow and kept next to
// the bearer token in the session store.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // "user", "seller", "admin"
}
