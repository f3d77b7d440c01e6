package domain

// RegisterRequest creates a new account with the identity provider.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest authenticates against the identity provider.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthSession is the provider-issued session returned to the client after
// register, login or refresh. IDToken is a JWT the client sends back as a
// Bearer token; this service verifies it but never mints its own.
type AuthSession struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AccountInfo is the provider's view of an authenticated account.
type AccountInfo struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// PasswordResetRequest asks the provider to mail a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// RefreshRequest exchanges a refresh token for a fresh session.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest re-authenticates with the current password before
// setting the new one. Mis-stating the current password fails the whole
// operation; nothing is changed.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangeEmailRequest re-authenticates, then asks the provider to send a
// verification mail to the new address. The email only switches once the
// user confirms out-of-band.
type ChangeEmailRequest struct {
	Password string `json:"password"`
	NewEmail string `json:"newEmail"`
}

// DeleteAccountRequest re-authenticates before the account and all of the
// user's documents are removed.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}
