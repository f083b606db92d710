package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/config"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/security"
)

// ErrSeedInProduction refuses to wipe a production database.
var ErrSeedInProduction = errors.New("seeding is disabled in production")

// ErrSeedPasswordMissing indicates no default password was configured for
// the seeded accounts.
var ErrSeedPasswordMissing = errors.New("seed default password is not configured")

// SeedResult summarizes what a completed seed run wrote.
type SeedResult struct {
	Users     int
	Incidents int
}

// SeedService rebuilds the database content from scratch: it wipes users,
// incidents, and the audit log, then inserts a fixed roster and sample
// incidents. The whole run is one transaction, so a failure leaves the
// previous content untouched.
type SeedService struct {
	cfg *config.AppConfig
	tx  port.Transactor
}

// NewSeedService constructs a SeedService instance.
func NewSeedService(cfg *config.AppConfig, tx port.Transactor) *SeedService {
	return &SeedService{cfg: cfg, tx: tx}
}

type seedUser struct {
	username   string
	fullName   string
	email      string
	role       domain.Role
	department domain.Department
}

var seedRoster = []seedUser{
	{
		username:   "brigadista1",
		fullName:   "Carlos Medina Rojas",
		email:      "carlos.medina@resguardo-civil.mx",
		role:       domain.RoleBrigadista,
		department: domain.DepartmentProteccionCivil,
	},
	{
		username:   "brigadista2",
		fullName:   "Lucía Fernández Ortiz",
		email:      "lucia.fernandez@resguardo-civil.mx",
		role:       domain.RoleBrigadista,
		department: domain.DepartmentBomberos,
	},
	{
		username:   "coordinador1",
		fullName:   "Miguel Ángel Paredes",
		email:      "miguel.paredes@resguardo-civil.mx",
		role:       domain.RoleCoordinador,
		department: domain.DepartmentProteccionCivil,
	},
	{
		username:   "autoridad1",
		fullName:   "Elena Vázquez Luna",
		email:      "elena.vazquez@resguardo-civil.mx",
		role:       domain.RoleAutoridad,
		department: domain.DepartmentSeguridad,
	},
	{
		username:   "admin1",
		fullName:   "Jorge Salinas Cruz",
		email:      "jorge.salinas@resguardo-civil.mx",
		role:       domain.RoleAdmin,
		department: domain.DepartmentAdministracion,
	},
}

type seedIncident struct {
	ubicacion   string
	descripcion string
	severity    domain.Severity
	status      domain.ReportStatus
	reporter    int // index into seedRoster
}

var seedIncidents = []seedIncident{
	{
		ubicacion:   "Av. Reforma esquina 5 de Mayo",
		descripcion: "Fuga de gas reportada por vecinos, zona acordonada",
		severity:    domain.SeverityAlta,
		status:      domain.StatusDraft,
		reporter:    0,
	},
	{
		ubicacion:   "Mercado municipal, nave 2",
		descripcion: "Conato de incendio en bodega de abarrotes",
		severity:    domain.SeverityAlta,
		status:      domain.StatusEnRevision,
		reporter:    0,
	},
	{
		ubicacion:   "Parque de los Héroes",
		descripcion: "Rama caída bloqueando andador principal",
		severity:    domain.SeverityBaja,
		status:      domain.StatusAprobado,
		reporter:    1,
	},
	{
		ubicacion:   "Calle Hidalgo 118",
		descripcion: "Encharcamiento severo tras lluvia, drenaje colapsado",
		severity:    domain.SeverityMedia,
		status:      domain.StatusCerrado,
		reporter:    1,
	},
	{
		ubicacion:   "Puente peatonal del libramiento",
		descripcion: "Barandal dañado por choque vehicular",
		severity:    domain.SeverityMedia,
		status:      domain.StatusDraft,
		reporter:    1,
	},
}

// Run wipes and reseeds the database. It refuses to run against a
// production environment unless force is set.
func (s *SeedService) Run(ctx context.Context, force bool) (*SeedResult, error) {
	if s.cfg.App.IsProduction() && !force {
		return nil, ErrSeedInProduction
	}
	if s.cfg.Seed.DefaultPassword == "" {
		return nil, ErrSeedPasswordMissing
	}

	hash, err := security.HashPassword(s.cfg.Seed.DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	result := &SeedResult{}

	err = s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		// Wipe order respects the created_by reference from incidents to
		// users.
		if err := repos.Audit.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repos.Incidents.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repos.Users.DeleteAll(ctx); err != nil {
			return err
		}

		userIDs := make([]string, len(seedRoster))
		for i, entry := range seedRoster {
			user := domain.User{
				ID:           uuid.NewString(),
				Username:     entry.username,
				PasswordHash: hash,
				FullName:     entry.fullName,
				Email:        entry.email,
				Role:         entry.role,
				Department:   entry.department,
				Active:       true,
				CreatedAt:    now,
			}
			if err := repos.Users.Create(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", entry.username, err)
			}
			userIDs[i] = user.ID
		}
		result.Users = len(seedRoster)

		for i, entry := range seedIncidents {
			reporter := userIDs[entry.reporter]
			incident := domain.Incident{
				ID: uuid.NewString(),
				Details: map[string]any{
					"ubicacion":   entry.ubicacion,
					"descripcion": entry.descripcion,
				},
				Severity:  entry.severity,
				Status:    entry.status,
				CreatedBy: reporter,
				UpdatedBy: reporter,
				CreatedAt: now.Add(time.Duration(i) * time.Second),
				UpdatedAt: now.Add(time.Duration(i) * time.Second),
				Version:   1,
			}
			if err := repos.Incidents.Create(ctx, incident); err != nil {
				return fmt.Errorf("seed incident %d: %w", i, err)
			}
		}
		result.Incidents = len(seedIncidents)

		return repos.Audit.Append(ctx, domain.AuditEntry{
			ID:        uuid.NewString(),
			Timestamp: now,
			ActorID:   domain.SystemActorID,
			Action:    domain.AuditSeedCompleted,
			TargetID:  domain.SystemActorID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("seed transaction: %w", err)
	}

	return result, nil
}
