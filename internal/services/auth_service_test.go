package services_test

import (
	"testing"

	"github.com/asaskevich/EventBus"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/domain"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func newAuthFixture(t *testing.T) (*services.AuthService, EventBus.Bus) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	bus := EventBus.New()
	return services.NewAuthService(repos.NewUserRepo(db), bus, "test-secret"), bus
}

func TestLoginAcceptsEmailOrUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)

	u, err := svc.Login("sid-1", "steve@grivyzom.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "Steve" {
		t.Fatalf("user = %q", u.Username)
	}

	if _, err := svc.Login("sid-2", "Steve", "Passw0rd!"); err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if _, err := svc.Login("sid-3", "Steve", "nope"); err != services.ErrBadCreds {
		t.Fatalf("err = %v, want ErrBadCreds", err)
	}
}

func TestLoginPublishesSnapshotOnBus(t *testing.T) {
	svc, bus := newAuthFixture(t)

	var seen *domain.User
	if err := bus.Subscribe(services.TopicLogin, func(u *domain.User) { seen = u }); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login("sid-1", "Steve", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	if seen == nil || seen.Username != "Steve" {
		t.Fatalf("bus snapshot = %+v", seen)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthFixture(t)

	if _, err := svc.Register("Steve", "Steve", "otro@grivyzom.test", "Passw0rd!"); err != services.ErrUserExists {
		t.Fatalf("dup username: err = %v", err)
	}
	if _, err := svc.Register("Nuevo", "Nuevo", "steve@grivyzom.test", "Passw0rd!"); err != services.ErrUserExists {
		t.Fatalf("dup email: err = %v", err)
	}
	u, err := svc.Register("Nuevo", "Nuevo", "nuevo@grivyzom.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RolePlayer {
		t.Fatalf("role = %s, want PLAYER", u.Role)
	}
}

func TestResetTokenRoundtrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, err := svc.IssueResetToken("steve@grivyzom.test")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetPassword(token, "NuevaClave1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login("sid-1", "Steve", "NuevaClave1"); err != nil {
		t.Fatalf("login with the new password: %v", err)
	}
	if _, err := svc.Login("sid-2", "Steve", "Passw0rd!"); err != services.ErrBadCreds {
		t.Fatal("old password must stop working")
	}

	// Garbage and foreign-key tokens are rejected.
	if err := svc.ResetPassword("not-a-token", "OtraClave1"); err == nil {
		t.Fatal("malformed token accepted")
	}
}
