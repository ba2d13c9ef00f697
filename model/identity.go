package model

// Identity is the authenticated caller of a request, extracted from the JWT by
// the HTTP layer and passed explicitly into every service call.
type Identity struct {
	UserID int64
	Role   string
}

func (i Identity) Admin() bool { return i.Role == RoleAdmin }
