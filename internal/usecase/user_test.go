package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

func adminActor() domain.Actor {
	return domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Active: true}
}

func validUserInput() CreateUserInput {
	return CreateUserInput{
		Username:   "brigadista9",
		Password:   "Tr3s!Llaves&Verdes",
		FullName:   "Rosa Delgado Pineda",
		Email:      "rosa.delgado@resguardo-civil.mx",
		Role:       domain.RoleBrigadista,
		Department: domain.DepartmentServiciosUrbanos,
	}
}

func TestUserService_Create_Success(t *testing.T) {
	users := newFakeUserRepo()
	audit := &fakeAuditRepo{}
	publisher := &fakePublisher{}
	service := NewUserService(users, audit, publisher, nil)

	created, err := service.Create(context.Background(), adminActor(), validUserInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.PasswordHash != "" {
		t.Fatalf("expected returned user without password hash")
	}
	if !created.Active {
		t.Fatalf("expected new account to start active")
	}

	stored, ok := users.users[created.ID]
	if !ok {
		t.Fatalf("expected account to be persisted")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "Tr3s!Llaves&Verdes" {
		t.Fatalf("expected stored password to be hashed")
	}

	if len(audit.byAction(domain.AuditUserCreated)) != 1 {
		t.Fatalf("expected one user_created audit entry")
	}
	if len(publisher.userCreated) != 1 {
		t.Fatalf("expected one user created event")
	}
}

func TestUserService_Create_DeniedForNonAdmin(t *testing.T) {
	users := newFakeUserRepo()
	service := NewUserService(users, &fakeAuditRepo{}, nil, nil)

	for _, role := range []domain.Role{domain.RoleBrigadista, domain.RoleCoordinador, domain.RoleAutoridad} {
		actor := domain.Actor{ID: "actor-1", Role: role, Active: true}
		_, err := service.Create(context.Background(), actor, validUserInput())

		var unauthorized *domain.UnauthorizedError
		if !errors.As(err, &unauthorized) {
			t.Fatalf("role %s: expected UnauthorizedError, got %v", role, err)
		}
		if unauthorized.Reason != domain.DenyInsufficientRole {
			t.Fatalf("role %s: expected reason %s, got %s", role, domain.DenyInsufficientRole, unauthorized.Reason)
		}
	}

	if len(users.users) != 0 {
		t.Fatalf("expected no accounts created")
	}
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	users := newFakeUserRepo(domain.User{
		ID:       "existing",
		Username: "brigadista9",
		Active:   true,
	})
	service := NewUserService(users, &fakeAuditRepo{}, nil, nil)

	if _, err := service.Create(context.Background(), adminActor(), validUserInput()); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserService_Create_ValidatesInput(t *testing.T) {
	service := NewUserService(newFakeUserRepo(), &fakeAuditRepo{}, nil, nil)
	ctx := context.Background()

	var validation *domain.ValidationError

	missingUsername := validUserInput()
	missingUsername.Username = "  "
	if _, err := service.Create(ctx, adminActor(), missingUsername); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for blank username, got %v", err)
	}

	badEmail := validUserInput()
	badEmail.Email = "not-an-address"
	if _, err := service.Create(ctx, adminActor(), badEmail); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for bad email, got %v", err)
	}

	badRole := validUserInput()
	badRole.Role = domain.Role("jefe")
	if _, err := service.Create(ctx, adminActor(), badRole); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown role, got %v", err)
	}

	badDepartment := validUserInput()
	badDepartment.Department = domain.Department("marina")
	if _, err := service.Create(ctx, adminActor(), badDepartment); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown department, got %v", err)
	}
}

func TestUserService_Create_RejectsWeakPassword(t *testing.T) {
	service := NewUserService(newFakeUserRepo(), &fakeAuditRepo{}, nil, nil)

	weak := validUserInput()
	weak.Password = "12345678"
	_, err := service.Create(context.Background(), adminActor(), weak)

	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for weak password, got %v", err)
	}
	if validation.Field != "password" {
		t.Fatalf("expected password field, got %s", validation.Field)
	}

	// Passwords built from the account's own identifiers score poorly.
	derived := validUserInput()
	derived.Password = "brigadista9!"
	if _, err := service.Create(context.Background(), adminActor(), derived); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for identifier-derived password, got %v", err)
	}
}

func TestUserService_SetActive(t *testing.T) {
	users := newFakeUserRepo(domain.User{ID: "user-1", Username: "brigadista1", Active: true})
	audit := &fakeAuditRepo{}
	service := NewUserService(users, audit, nil, nil)

	if err := service.SetActive(context.Background(), adminActor(), "user-1", false); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	if users.users["user-1"].Active {
		t.Fatalf("expected account to be deactivated")
	}
	if len(audit.byAction(domain.AuditUserStatusChanged)) != 1 {
		t.Fatalf("expected one user_status_changed audit entry")
	}
}

func TestUserService_SetActive_NotFound(t *testing.T) {
	service := NewUserService(newFakeUserRepo(), &fakeAuditRepo{}, nil, nil)

	err := service.SetActive(context.Background(), adminActor(), "missing", false)

	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUserService_ListAndGet_StripHashes(t *testing.T) {
	users := newFakeUserRepo(
		domain.User{ID: "user-1", Username: "brigadista1", PasswordHash: "hash-1", Role: domain.RoleBrigadista, Active: true},
		domain.User{ID: "user-2", Username: "coordinador1", PasswordHash: "hash-2", Role: domain.RoleCoordinador, Active: true},
	)
	service := NewUserService(users, &fakeAuditRepo{}, nil, nil)

	listed, total, err := service.List(context.Background(), adminActor(), port.UserFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	for _, user := range listed {
		if user.PasswordHash != "" {
			t.Fatalf("expected listed user %s without password hash", user.ID)
		}
	}

	got, err := service.Get(context.Background(), adminActor(), "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected fetched user without password hash")
	}

	// The repository record itself keeps the hash.
	if users.users["user-1"].PasswordHash != "hash-1" {
		t.Fatalf("expected stored hash to be untouched")
	}
}

func TestUserService_List_FiltersByRole(t *testing.T) {
	users := newFakeUserRepo(
		domain.User{ID: "user-1", Username: "brigadista1", Role: domain.RoleBrigadista, Active: true},
		domain.User{ID: "user-2", Username: "coordinador1", Role: domain.RoleCoordinador, Active: true},
	)
	service := NewUserService(users, &fakeAuditRepo{}, nil, nil)

	listed, total, err := service.List(context.Background(), adminActor(), port.UserFilter{Role: domain.RoleCoordinador})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 1 || len(listed) != 1 || listed[0].ID != "user-2" {
		t.Fatalf("expected only the coordinador account, got total=%d", total)
	}
}
