package service

import (
	"testing"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
)

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.users.RegisterUser(ctx, dto.RegisterUserRequest{
		Username: "ada", Password: "analytical", Fullname: "Ada L", EmailAddress: " Ada@Example.com ",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if u.EmailAddress != "ada@example.com" || u.Fullname != "Ada L" {
		t.Errorf("unexpected user %+v", u)
	}

	var stored model.User
	if err := env.db.First(&stored, u.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "analytical" {
		t.Errorf("password stored in clear or missing: %q", stored.PasswordHash)
	}

	tests := []dto.RegisterUserRequest{
		{Username: "ada", Password: "whatever1", EmailAddress: "other@example.com"},
		{Username: "bob", Password: "whatever1", EmailAddress: "ADA@example.com"},
	}
	for _, req := range tests {
		_, err := env.users.RegisterUser(ctx, req)
		wantCode(t, err, ErrorConflict)
	}
}

func TestUserLookups(t *testing.T) {
	env := newTestEnv(t)
	id := env.user(t, "grace")
	env.user(t, "linus")

	u, err := env.users.GetUser(ctx, id)
	if err != nil || u.Username != "grace" {
		t.Fatalf("GetUser: %+v %v", u, err)
	}
	u, err = env.users.GetUserByUsername(ctx, "linus")
	if err != nil || u.Username != "linus" {
		t.Fatalf("GetUserByUsername: %+v %v", u, err)
	}
	all, err := env.users.ListUsers(ctx)
	if err != nil || len(all) != 2 || all[0].ID != id {
		t.Fatalf("ListUsers: %+v %v", all, err)
	}

	_, err = env.users.GetUser(ctx, 404)
	wantCode(t, err, ErrorNotFound)
	_, err = env.users.GetUserByUsername(ctx, "nobody")
	wantCode(t, err, ErrorNotFound)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	id := env.user(t, "ken")

	tok, err := env.users.Authenticate(ctx, dto.LoginRequest{Username: "ken", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if tok.AccessToken == "" || tok.TokenType != "Bearer" || tok.User.ID != id || tok.User.LastLogin == nil {
		t.Errorf("unexpected token response %+v", tok)
	}
	u, err := env.users.GetUser(ctx, id)
	if err != nil || u.LastLogin == nil {
		t.Errorf("last login not stored: %+v %v", u, err)
	}

	_, err = env.users.Authenticate(ctx, dto.LoginRequest{Username: "ken", Password: "battery staple"})
	wantCode(t, err, ErrorUnauthorized)
	_, err = env.users.Authenticate(ctx, dto.LoginRequest{Username: "nobody", Password: "x"})
	wantCode(t, err, ErrorUnauthorized)
}
