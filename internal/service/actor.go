package service

import "github.com/noah-isme/lostid-api/internal/models"

// Actor is the authenticated principal performing an operation, plus request metadata for audit rows.
type Actor struct {
	UserID    string
	Role      models.UserRole
	IP        string
	UserAgent string
}

// ActorFromClaims builds an Actor from verified token claims.
func ActorFromClaims(claims *models.JWTClaims, ip, userAgent string) Actor {
	if claims == nil {
		return Actor{IP: ip, UserAgent: userAgent}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role, IP: ip, UserAgent: userAgent}
}

func (a Actor) isStudent() bool { return a.Role == models.RoleStudent && a.UserID != "" }

func (a Actor) isAdmin() bool { return a.Role.IsAdmin() && a.UserID != "" }
