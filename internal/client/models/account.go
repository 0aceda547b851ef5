package models

// Credentials are submitted to the sign-in endpoint.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a new account.
type Registration struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
}
