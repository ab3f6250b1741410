package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "soapnote", 24*time.Hour)

	tokenStr, expiresAt, err := issuer.Issue("dr.smith@clinic.example", []string{"physician"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenStr == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Errorf("expected expiry about 24h out, got %v", time.Until(expiresAt))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer("soapnote"))
	if err != nil || !token.Valid {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.Subject != "dr.smith@clinic.example" {
		t.Errorf("expected subject dr.smith@clinic.example, got %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "physician" {
		t.Errorf("expected roles=[physician], got %v", claims.Roles)
	}
}

func TestTokenIssuer_AcceptedByMiddlewareConfig(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "soapnote", time.Hour)

	tokenStr, _, err := issuer.Issue("dr.jones@clinic.example", []string{"admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Issuer != "soapnote" {
		t.Errorf("expected issuer soapnote, got %s", claims.Issuer)
	}
}
