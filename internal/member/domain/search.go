package domain

import (
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
)

// Nombres lógicos de los campos buscables y proyectados.
const (
	FieldMemberID = "member_id"
	FieldUsername = "username"
	FieldAge      = "age"
	FieldTeamID   = "team_id"
	FieldTeamName = "team_name"
)

// PartnerTeam marca las condiciones que requieren que el miembro tenga equipo.
const PartnerTeam = "team"

// MemberSearchCond agrupa los filtros opcionales de búsqueda.
// Un campo nil significa "sin restricción" sobre ese campo.
type MemberSearchCond struct {
	Username *string `json:"username,omitempty"`
	AgeGoe   *int    `json:"age_goe,omitempty"`
	AgeLoe   *int    `json:"age_loe,omitempty"`
	TeamName *string `json:"team_name,omitempty"`
}

// ---------------- Predicados por campo ----------------

// UsernameEq filtra por username exacto; nil si no hay valor.
func UsernameEq(username *string) *sharedDomain.Criterion {
	if username == nil {
		return nil
	}
	return &sharedDomain.Criterion{Field: FieldUsername, Op: sharedDomain.OpEq, Value: *username}
}

// AgeGoe filtra por edad >= valor.
func AgeGoe(age *int) *sharedDomain.Criterion {
	if age == nil {
		return nil
	}
	return &sharedDomain.Criterion{Field: FieldAge, Op: sharedDomain.OpGte, Value: *age}
}

// AgeLoe filtra por edad <= valor.
func AgeLoe(age *int) *sharedDomain.Criterion {
	if age == nil {
		return nil
	}
	return &sharedDomain.Criterion{Field: FieldAge, Op: sharedDomain.OpLte, Value: *age}
}

// TeamNameEq filtra por nombre de equipo. Un miembro sin equipo nunca lo cumple.
func TeamNameEq(name *string) *sharedDomain.Criterion {
	if name == nil {
		return nil
	}
	return &sharedDomain.Criterion{Field: FieldTeamName, Op: sharedDomain.OpEq, Value: *name, Partner: PartnerTeam}
}

// BuildPredicates devuelve un hueco por campo opcional, en orden fijo
// (username, ageGoe, ageLoe, teamName). Los campos ausentes quedan a nil.
func BuildPredicates(cond MemberSearchCond) []*sharedDomain.Criterion {
	return []*sharedDomain.Criterion{
		UsernameEq(cond.Username),
		AgeGoe(cond.AgeGoe),
		AgeLoe(cond.AgeLoe),
		TeamNameEq(cond.TeamName),
	}
}

// ToConditions implementa sharedDomain.Criteria.
func (c MemberSearchCond) ToConditions() []sharedDomain.Criterion {
	return sharedDomain.And(BuildPredicates(c)...)
}
