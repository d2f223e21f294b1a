// Package schema models the logical-to-physical name mapping of the
// credential store. Every table and column name the repositories emit comes
// from a Map, so an embedding application can point the engine at an
// existing schema without touching query code.
package schema

// AccountTable names the account table and its columns.
type AccountTable struct {
	Name      string
	ID        string
	ShareCode string
	Extra     string
	CreatedAt string
	UpdatedAt string
}

// UserTable names the user table and its columns.
type UserTable struct {
	Name               string
	ID                 string
	AccountID          string
	Username           string
	FirstName          string
	LastName           string
	Email              string
	EmailVerifiedAt    string
	Phone              string
	PhoneVerifiedAt    string
	Role               string
	Salt               string
	PasswordHash       string
	ResetCode          string
	ResetCodeExpiresAt string
	CreatedAt          string
	UpdatedAt          string
}

// TokenTable names the auth-token table and its columns.
type TokenTable struct {
	Name      string
	ID        string
	UserID    string
	ExpiresAt string
	CreatedAt string
}

// VerifyTable names the verification-request table and its columns.
type VerifyTable struct {
	Name      string
	ID        string
	Contact   string
	Code      string
	ExpiresAt string
}

// Map is the full name mapping handed to each repository at construction.
type Map struct {
	Account AccountTable
	User    UserTable
	Token   TokenTable
	Verify  VerifyTable
}

// Default returns the mapping matching the shipped migrations.
func Default() Map {
	return Map{
		Account: AccountTable{
			Name:      "account",
			ID:        "id",
			ShareCode: "share_code",
			Extra:     "extra",
			CreatedAt: "created_at",
			UpdatedAt: "updated_at",
		},
		User: UserTable{
			Name:               "app_user",
			ID:                 "id",
			AccountID:          "account_id",
			Username:           "username",
			FirstName:          "first_name",
			LastName:           "last_name",
			Email:              "email",
			EmailVerifiedAt:    "email_verified_at",
			Phone:              "phone",
			PhoneVerifiedAt:    "phone_verified_at",
			Role:               "role",
			Salt:               "salt",
			PasswordHash:       "password_hash",
			ResetCode:          "reset_code",
			ResetCodeExpiresAt: "reset_code_expires_at",
			CreatedAt:          "created_at",
			UpdatedAt:          "updated_at",
		},
		Token: TokenTable{
			Name:      "auth_token",
			ID:        "id",
			UserID:    "user_id",
			ExpiresAt: "expires_at",
			CreatedAt: "created_at",
		},
		Verify: VerifyTable{
			Name:      "send_verify",
			ID:        "id",
			Contact:   "contact",
			Code:      "verify_code",
			ExpiresAt: "expires_at",
		},
	}
}

// WithDefaults returns a copy of m with every empty name replaced by the
// default, so callers only override what differs.
func (m Map) WithDefaults() Map {
	d := Default()
	fill(&m.Account.Name, d.Account.Name)
	fill(&m.Account.ID, d.Account.ID)
	fill(&m.Account.ShareCode, d.Account.ShareCode)
	fill(&m.Account.Extra, d.Account.Extra)
	fill(&m.Account.CreatedAt, d.Account.CreatedAt)
	fill(&m.Account.UpdatedAt, d.Account.UpdatedAt)

	fill(&m.User.Name, d.User.Name)
	fill(&m.User.ID, d.User.ID)
	fill(&m.User.AccountID, d.User.AccountID)
	fill(&m.User.Username, d.User.Username)
	fill(&m.User.FirstName, d.User.FirstName)
	fill(&m.User.LastName, d.User.LastName)
	fill(&m.User.Email, d.User.Email)
	fill(&m.User.EmailVerifiedAt, d.User.EmailVerifiedAt)
	fill(&m.User.Phone, d.User.Phone)
	fill(&m.User.PhoneVerifiedAt, d.User.PhoneVerifiedAt)
	fill(&m.User.Role, d.User.Role)
	fill(&m.User.Salt, d.User.Salt)
	fill(&m.User.PasswordHash, d.User.PasswordHash)
	fill(&m.User.ResetCode, d.User.ResetCode)
	fill(&m.User.ResetCodeExpiresAt, d.User.ResetCodeExpiresAt)
	fill(&m.User.CreatedAt, d.User.CreatedAt)
	fill(&m.User.UpdatedAt, d.User.UpdatedAt)

	fill(&m.Token.Name, d.Token.Name)
	fill(&m.Token.ID, d.Token.ID)
	fill(&m.Token.UserID, d.Token.UserID)
	fill(&m.Token.ExpiresAt, d.Token.ExpiresAt)
	fill(&m.Token.CreatedAt, d.Token.CreatedAt)

	fill(&m.Verify.Name, d.Verify.Name)
	fill(&m.Verify.ID, d.Verify.ID)
	fill(&m.Verify.Contact, d.Verify.Contact)
	fill(&m.Verify.Code, d.Verify.Code)
	fill(&m.Verify.ExpiresAt, d.Verify.ExpiresAt)

	return m
}

func fill(target *string, def string) {
	if *target == "" {
		*target = def
	}
}
