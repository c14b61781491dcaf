package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/storage/memory"
)

func testActor(t *testing.T, code, password string, role domain.Role) domain.Actor {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return domain.Actor{
		ID:           42,
		Code:         code,
		Role:         role,
		PasswordHash: hash,
	}
}

func TestAuthenticate(t *testing.T) {
	actor := testActor(t, "emp-42", "tricot2024", domain.RoleEmploye)
	svc := NewService(memory.NewActorRepository(actor), nil, nil)

	got, err := svc.Authenticate("emp-42", "tricot2024")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != actor.ID {
		t.Errorf("actor id = %d, want %d", got.ID, actor.ID)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	actor := testActor(t, "emp-42", "tricot2024", domain.RoleEmploye)
	svc := NewService(memory.NewActorRepository(actor), nil, nil)

	_, err := svc.Authenticate("emp-42", "wrong")
	if !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownCode(t *testing.T) {
	svc := NewService(memory.NewActorRepository(), nil, nil)

	// Неизвестный код даёт ту же ошибку, что и неверный пароль.
	_, err := svc.Authenticate("ghost", "whatever")
	if !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestAuthenticate_NormalizesRole(t *testing.T) {
	actor := testActor(t, "emp-1", "pw-secret-1", "Admin")
	svc := NewService(memory.NewActorRepository(actor), nil, nil)

	got, err := svc.Authenticate("emp-1", "pw-secret-1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want %q", got.Role, domain.RoleAdmin)
	}
}

func TestLandingPage(t *testing.T) {
	svc := NewService(memory.NewActorRepository(), nil, nil)

	tests := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleSuperAdmin, PageSuperAdminDashboard},
		{domain.RoleAdmin, PageNewOrder},
		{domain.RoleEmploye, PageNewOrder},
	}
	for _, tt := range tests {
		got := svc.LandingPage(domain.Actor{Role: tt.role})
		if got != tt.want {
			t.Errorf("LandingPage(%s) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	actor := domain.Actor{ID: 7, Code: "adm-7", Role: domain.RoleAdmin}

	token, err := GenerateToken("test-secret", actor, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.ActorID != 7 {
		t.Errorf("actor_id = %d, want 7", claims.ActorID)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("session_id = %q, want %q", claims.SessionID, "sess-1")
	}
	if claims.Role != string(domain.RoleAdmin) {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleAdmin)
	}
	// Админ без salon_id получает арендный скоуп по своему id.
	if claims.SalonID != "7" {
		t.Errorf("salon_id = %q, want %q", claims.SalonID, "7")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", domain.Actor{ID: 1}, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("test-secret", domain.Actor{ID: 1}, "", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	if _, err := GenerateToken("", domain.Actor{ID: 1}, "", time.Hour); err == nil {
		t.Fatal("empty secret must be rejected")
	}
}
