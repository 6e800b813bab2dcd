package model

// Role is a player's secret game role
type Role string

const (
	RoleWerewolf Role = "werewolf"
	RoleSeer     Role = "seer"
	RoleDoctor   Role = "doctor"
	RoleVillager Role = "villager"
)

// Team is the side a role plays for
type Team string

const (
	TeamTown  Team = "town"
	TeamMafia Team = "mafia"
)

// RoleTeams is the fixed role -> team mapping. A player's team is always
// derived from their role through this map, never set independently.
var RoleTeams = map[Role]Team{
	RoleWerewolf: TeamMafia,
	RoleSeer:     TeamTown,
	RoleDoctor:   TeamTown,
	RoleVillager: TeamTown,
}
