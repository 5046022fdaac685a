package resend

// Credentials are mailed once to a newly created user.
type Credentials struct {
	Email    string
	Username string
	Password string
	LoginURL string
}
