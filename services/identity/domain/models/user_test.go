package models

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func validParams() NewUserParams {
	return NewUserParams{
		Email:    "  Kim@SpicyJump.io ",
		Password: "gochujang123",
		Name:     "Kim Minji",
	}
}

func TestNewUser(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		u, err := NewUser(validParams(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Email != "kim@spicyjump.io" {
			t.Errorf("email not normalised: %q", u.Email)
		}
		if u.Role != RoleBuyer || u.Status != StatusActive || u.Language != LanguageKorean {
			t.Errorf("unexpected defaults: %s %s %s", u.Role, u.Status, u.Language)
		}
		if u.PasswordHash == "" || u.PasswordHash == "gochujang123" {
			t.Fatal("password must be hashed")
		}
		if !u.CheckPassword("gochujang123") || u.CheckPassword("wrong-password") {
			t.Fatal("CheckPassword mismatch")
		}
	})

	t.Run("seller may self-register", func(t *testing.T) {
		p := validParams()
		p.Role = RoleSeller
		u, err := NewUser(p, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Role != RoleSeller {
			t.Fatalf("expected SELLER, got %s", u.Role)
		}
	})

	tests := []struct {
		name   string
		mutate func(*NewUserParams)
	}{
		{"admin role", func(p *NewUserParams) { p.Role = RoleAdmin }},
		{"bad email", func(p *NewUserParams) { p.Email = "not-an-email" }},
		{"short password", func(p *NewUserParams) { p.Password = "short" }},
		{"long password", func(p *NewUserParams) { p.Password = strings.Repeat("x", 73) }},
		{"blank name", func(p *NewUserParams) { p.Name = "   " }},
		{"unknown language", func(p *NewUserParams) { p.Language = "ja-JP" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			if _, err := NewUser(p, now); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApplyProfile(t *testing.T) {
	u, err := NewUser(validParams(), now)
	if err != nil {
		t.Fatal(err)
	}
	name := "  Lee Jiwoo "
	lang := LanguageEnglish
	later := now.Add(time.Hour)
	if err := u.ApplyProfile(ProfileUpdate{Name: &name, Language: &lang}, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Lee Jiwoo" || u.Language != LanguageEnglish || u.Phone != "" {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if !u.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt not bumped: %v", u.UpdatedAt)
	}

	bad := Language("fr-FR")
	if err := u.ApplyProfile(ProfileUpdate{Language: &bad}, later); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestSetStatus(t *testing.T) {
	u := &User{Status: StatusActive}
	if err := u.SetStatus(StatusSuspended, now); err != nil || u.Status != StatusSuspended {
		t.Fatalf("expected SUSPENDED, got %s (%v)", u.Status, err)
	}
	if err := u.SetStatus("BANNED", now); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
