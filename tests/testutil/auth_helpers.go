package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims carrying a role
// claim, mirroring what the Auth0 middleware would produce.
func MockValidatedClaims(subject, issuer, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// MockAuth returns a gin middleware that populates the context the way
// middleware.EnsureValidToken does, without contacting Auth0.
func MockAuth(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", "mock-access-token")
		c.Set("validated_claims", MockValidatedClaims(auth0ID, "https://test.auth0.com/", role))
		c.Next()
	}
}
