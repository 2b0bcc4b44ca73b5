package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Role is the coarse classification of a caller. Values match the
// persisted representation of users.role.
type Role int

const (
	RoleAdmin Role = 1
	RoleUser  Role = 2
)

var roleNames = map[Role]string{
	RoleAdmin: "Admin",
	RoleUser:  "User",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole accepts a role name in any letter case or its numeric value.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for role, name := range roleNames {
		if strings.EqualFold(name, s) {
			return role, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Role(n).IsValid() {
		return Role(n), nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return json.Marshal(int(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := ParseRole(v)
		if err != nil {
			return err
		}
		*r = parsed
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("role must be a whole number, got %v", v)
		}
		// left unchecked so field validation can report the bad value
		*r = Role(int(v))
	default:
		return fmt.Errorf("role must be a string or number")
	}
	return nil
}

// Identity is the authenticated caller of a single request. It is built
// once by the transport layer and passed explicitly to every operation.
type Identity struct {
	CallerID int64
	Role     Role
}

func NewIdentity(callerID int64, role Role) (Identity, error) {
	if callerID <= 0 {
		return Identity{}, fmt.Errorf("caller id must be positive, got %d", callerID)
	}
	if !role.IsValid() {
		return Identity{}, fmt.Errorf("invalid role %d", int(role))
	}
	return Identity{CallerID: callerID, Role: role}, nil
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type ctxKey string

const contextIdentityKey ctxKey = "identity"

// ContextWithIdentity hands the identity from the transport middleware to
// the handler. Services never read it from the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(Identity)
	return id, ok
}
