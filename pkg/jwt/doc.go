// Package jwt provides JSON Web Token utilities for the Stitch CMS API.
//
// The jwt package handles RS256 token signing, validation, and claims
// extraction for authentication.
//
// # Token Signing
//
// Sign tokens for authenticated users:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/private.pem",
//	    PublicKeyPath:  "keys/public.pem",
//	    Issuer:         "api.stitchcms.dev",
//	    ExpirationMins: 15,
//	})
//
//	token, err := service.Sign(jwt.Claims{
//	    UserID: user.ID,
//	    Email:  user.Email,
//	    Role:   string(user.Role),
//	})
//
// # Token Validation
//
// Validate and extract claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// # Key Management
//
// Development keys can be generated on first run:
//
//	err := jwt.GenerateKeyPair("keys/private.pem", "keys/public.pem")
//
// # Claims
//
// Claims carry the registered JWT fields plus application fields:
//
//	type Claims struct {
//	    Subject   string // User ID
//	    IssuedAt  int64  // Token creation time
//	    ExpiresAt int64  // Token expiration
//	    Role      string // viewer, editor or admin
//	}
package jwt
