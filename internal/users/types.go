package users

// User is the normalized record of one Users worksheet row.
type User struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	PasswordHash    string `json:"-"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`
	CreatedAt       string `json:"created_at"`
	LastLogin       string `json:"last_login"`
	SessionToken    string `json:"-"`
	ProfileComplete bool   `json:"profile_complete"`
}

// ProfileUpdate carries the optional profile fields; nil means leave the
// cell untouched.
type ProfileUpdate struct {
	Username *string
	FullName *string
	Phone    *string
	Address  *string
	City     *string
	State    *string
	Pincode  *string
}

// LegacyUser is a row of the original plain-password user layout, kept
// for the legacy endpoints that predate hashed credentials.
type LegacyUser struct {
	Email     string `json:"Email"`
	Name      string `json:"Name"`
	Phone     string `json:"Phone"`
	Address   string `json:"Address"`
	Gender    string `json:"Gender"`
	Age       string `json:"Age"`
	JoinedAt  string `json:"JoinedAt"`
	LastLogin string `json:"LastLogin"`
}

// LegacyProfileUpdate mirrors the mutable columns of the legacy layout.
type LegacyProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
	Gender  *string
	Age     *string
}
