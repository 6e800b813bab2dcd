package game

import (
	"math/rand"

	"moonhollow/internal/model"
)

// RoleDistribution returns the list of roles to hand out for a roster size.
//
//	1-3 players: 1 werewolf, rest villagers (small rooms for testing)
//	4-5 players: 1 werewolf, 1 seer, rest villagers
//	6+  players: 2 werewolves, 1 seer, 1 doctor, rest villagers
func RoleDistribution(playerCount int) []model.Role {
	if playerCount <= 0 {
		return nil
	}

	var roles []model.Role
	switch {
	case playerCount <= 3:
		roles = []model.Role{model.RoleWerewolf}
	case playerCount <= 5:
		roles = []model.Role{model.RoleWerewolf, model.RoleSeer}
	default:
		roles = []model.Role{model.RoleWerewolf, model.RoleWerewolf, model.RoleSeer, model.RoleDoctor}
	}
	for len(roles) < playerCount {
		roles = append(roles, model.RoleVillager)
	}
	return roles
}

// assignRoles shuffles the distribution for the roster size and assigns a
// role and derived team to every player. Caller holds the room lock.
func (s *State) assignRoles() {
	roles := RoleDistribution(len(s.players))
	rand.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	for i, id := range s.order {
		p := s.players[id]
		p.Role = roles[i]
		p.Team = model.RoleTeams[roles[i]]
	}
}

// AssignRoles randomizes roles across the roster. Invoked once at game start.
func (s *State) AssignRoles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignRoles()
}
