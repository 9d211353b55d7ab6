package models

// User represents a simulated-trading account.
type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username,omitempty"`
	Credits  float64 `json:"credits"` // available simulated cash
}
