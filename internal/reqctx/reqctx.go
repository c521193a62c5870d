// Package reqctx carries the per-request identity and tenant database
// through an HTTP request.
package reqctx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-viper/mapstructure/v2"
)

// RoleSuperAdmin is the role that may see every tenant.
const RoleSuperAdmin = "super_admin"

const ginKey = "schemarun.reqctx"

type ctxKey struct{}

// User is the authenticated principal.
type User struct {
	ID       string `mapstructure:"id" json:"id"`
	Role     string `mapstructure:"role" json:"role"`
	AgencyID *int   `mapstructure:"agency_id" json:"agency_id,omitempty"`
}

// Context is the request augmentation: who is calling and which database
// serves them.
type Context struct {
	User         *User
	DB           *sql.DB
	IsSuperAdmin bool
	AgencyID     *int
	Extra        map[string]any
}

type claimsDoc struct {
	ID       string         `mapstructure:"id"`
	Subject  string         `mapstructure:"sub"`
	Role     string         `mapstructure:"role"`
	AgencyID *int           `mapstructure:"agency_id"`
	Super    bool           `mapstructure:"super_admin"`
	Attrs    map[string]any `mapstructure:"attrs"`
	Remain   map[string]any `mapstructure:",remain"`
}

var reservedClaims = map[string]bool{
	"exp": true, "nbf": true, "iat": true, "iss": true, "aud": true, "jti": true,
}

// FromClaims builds a Context from verified token claims. The user id comes
// from "id", falling back to "sub". Super admin is granted by role, by a
// super_admin claim, or by attrs.super_admin.
func FromClaims(claims map[string]any) (*Context, error) {
	var doc claimsDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	id := doc.ID
	if id == "" {
		id = doc.Subject
	}
	if id == "" {
		return nil, errors.New("claims carry no user id")
	}

	superAdmin := doc.Role == RoleSuperAdmin || doc.Super
	if v, ok := doc.Attrs["super_admin"].(bool); ok && v {
		superAdmin = true
	}
	extra := map[string]any{}
	for k, v := range doc.Remain {
		if !reservedClaims[k] {
			extra[k] = v
		}
	}
	return &Context{
		User:         &User{ID: id, Role: doc.Role, AgencyID: doc.AgencyID},
		IsSuperAdmin: superAdmin,
		AgencyID:     doc.AgencyID,
		Extra:        extra,
	}, nil
}

// HasRole reports whether the user holds one of roles. Super admins pass.
func (c *Context) HasRole(roles ...string) bool {
	if c == nil || c.User == nil {
		return false
	}
	if c.IsSuperAdmin {
		return true
	}
	for _, r := range roles {
		if c.User.Role == r {
			return true
		}
	}
	return false
}

// Set stores rc on the gin context and on the request context.
func Set(c *gin.Context, rc *Context) {
	c.Set(ginKey, rc)
	c.Request = c.Request.WithContext(WithContext(c.Request.Context(), rc))
}

// Get returns the Context stored by Set.
func Get(c *gin.Context) (*Context, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return nil, false
	}
	rc, ok := v.(*Context)
	return rc, ok && rc != nil
}

// WithContext returns ctx carrying rc.
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the Context carried by ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*Context)
	return rc, ok && rc != nil
}
