package entity

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Identity is the authenticated caller. It is resolved by the HTTP layer and
// passed explicitly into every core operation.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) RequireRole(roles ...Role) error {
	for _, r := range roles {
		if i.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
