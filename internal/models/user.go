package models

// User is the authenticated identity behind a session
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is the body of POST /auth/login and /auth/register
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// AuthResponse is returned by the sign-in and sign-up endpoints
type AuthResponse struct {
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

// ProfileUpdate is the body of PUT /users/profile
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
