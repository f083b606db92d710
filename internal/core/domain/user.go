package domain

import "time"

// Role determines which actions an account may perform.
type Role string

const (
	RoleBrigadista  Role = "brigadista"
	RoleCoordinador Role = "coordinador"
	RoleAutoridad   Role = "autoridad"
	RoleAdmin       Role = "admin"
)

// Roles lists every assignable role.
var Roles = []Role{RoleBrigadista, RoleCoordinador, RoleAutoridad, RoleAdmin}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleBrigadista, RoleCoordinador, RoleAutoridad, RoleAdmin:
		return true
	}
	return false
}

// Department identifies the municipal unit an account belongs to.
// Informational only; the authorization policy never consults it.
type Department string

const (
	DepartmentProteccionCivil  Department = "proteccion_civil"
	DepartmentBomberos         Department = "bomberos"
	DepartmentSeguridad        Department = "seguridad"
	DepartmentServiciosUrbanos Department = "servicios_urbanos"
	DepartmentAdministracion   Department = "administracion"
)

// Valid reports whether the department is one of the known values.
func (d Department) Valid() bool {
	switch d {
	case DepartmentProteccionCivil, DepartmentBomberos, DepartmentSeguridad,
		DepartmentServiciosUrbanos, DepartmentAdministracion:
		return true
	}
	return false
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Phone        *string
	Role         Role
	Department   Department
	Active       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Actor reduces a user to the fields the authorization policy consults.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Active: u.Active}
}
