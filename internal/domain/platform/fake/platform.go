// Package fake is an in-memory platform.Platform used by tests.
package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
)

// Call records one mutating platform request.
type Call struct {
	Op     string
	Guild  snowflake.ID
	User   snowflake.ID
	RoleID snowflake.ID
	Name   string
}

type Platform struct {
	mu      sync.Mutex
	nextID  snowflake.ID
	roles   map[snowflake.ID][]platform.Role
	members map[snowflake.ID]map[snowflake.ID]*platform.Member
	calls   []Call

	fail     map[string]error
	uncached map[snowflake.ID]bool
	lookups  int
}

func New() *Platform {
	return &Platform{
		nextID:   1000,
		roles:    map[snowflake.ID][]platform.Role{},
		members:  map[snowflake.ID]map[snowflake.ID]*platform.Member{},
		fail:     map[string]error{},
		uncached: map[snowflake.ID]bool{},
	}
}

// SetFail injects err for an operation: "member", "roles", "add", "remove"
// or "create". A nil err clears it.
func (p *Platform) SetFail(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.fail, op)
		return
	}
	p.fail[op] = err
}

// AddGuildRole registers a role and returns its ID.
func (p *Platform) AddGuildRole(guildID snowflake.ID, name string) snowflake.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addRoleLocked(guildID, name).ID
}

// AddMember registers a member holding the given roles.
func (p *Platform) AddMember(guildID, userID snowflake.ID, roleIDs ...snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.members[guildID] == nil {
		p.members[guildID] = map[snowflake.ID]*platform.Member{}
	}
	p.members[guildID][userID] = &platform.Member{
		ID:      userID,
		GuildID: guildID,
		Name:    fmt.Sprintf("user-%d", userID),
		RoleIDs: slices.Clone(roleIDs),
	}
}

// RemoveMember simulates a member leaving.
func (p *Platform) RemoveMember(guildID, userID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members[guildID], userID)
}

// Uncache hides a member from CachedMember while Member still resolves it.
func (p *Platform) Uncache(userID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uncached[userID] = true
}

// MemberLookups counts Member calls.
func (p *Platform) MemberLookups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookups
}

// MemberRoleNames returns the names of the roles a member holds, sorted.
func (p *Platform) MemberRoleNames(guildID, userID snowflake.ID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[guildID][userID]
	if !ok {
		return nil
	}
	var names []string
	for _, id := range m.RoleIDs {
		for _, r := range p.roles[guildID] {
			if r.ID == id {
				names = append(names, r.Name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// RoleNames lists the guild's role names, sorted.
func (p *Platform) RoleNames(guildID snowflake.ID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.roles[guildID]))
	for _, r := range p.roles[guildID] {
		names = append(names, r.Name)
	}
	slices.Sort(names)
	return names
}

// Calls returns the recorded mutating calls.
func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// ResetCalls clears the call log.
func (p *Platform) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

func (p *Platform) Member(_ context.Context, guildID, userID snowflake.ID) (platform.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	if err := p.fail["member"]; err != nil {
		return platform.Member{}, err
	}
	m, ok := p.members[guildID][userID]
	if !ok {
		return platform.Member{}, platform.ErrMemberNotFound
	}
	out := *m
	out.RoleIDs = slices.Clone(m.RoleIDs)
	return out, nil
}

func (p *Platform) CachedMember(guildID, userID snowflake.ID) (platform.Member, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[guildID][userID]
	if !ok || p.uncached[userID] {
		return platform.Member{}, false
	}
	out := *m
	out.RoleIDs = slices.Clone(m.RoleIDs)
	return out, true
}

func (p *Platform) Roles(_ context.Context, guildID snowflake.ID) ([]platform.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail["roles"]; err != nil {
		return nil, err
	}
	return slices.Clone(p.roles[guildID]), nil
}

func (p *Platform) AddRole(_ context.Context, guildID, userID, roleID snowflake.ID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail["add"]; err != nil {
		return err
	}
	m, ok := p.members[guildID][userID]
	if !ok {
		return platform.ErrMemberNotFound
	}
	p.calls = append(p.calls, Call{Op: "add", Guild: guildID, User: userID, RoleID: roleID})
	if !slices.Contains(m.RoleIDs, roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

func (p *Platform) RemoveRole(_ context.Context, guildID, userID, roleID snowflake.ID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail["remove"]; err != nil {
		return err
	}
	m, ok := p.members[guildID][userID]
	if !ok {
		return platform.ErrMemberNotFound
	}
	p.calls = append(p.calls, Call{Op: "remove", Guild: guildID, User: userID, RoleID: roleID})
	m.RoleIDs = slices.DeleteFunc(m.RoleIDs, func(id snowflake.ID) bool { return id == roleID })
	return nil
}

func (p *Platform) CreateRole(_ context.Context, guildID snowflake.ID, name string, _ int, _ string) (platform.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail["create"]; err != nil {
		return platform.Role{}, err
	}
	p.calls = append(p.calls, Call{Op: "create", Guild: guildID, Name: name})
	return p.addRoleLocked(guildID, name), nil
}

func (p *Platform) addRoleLocked(guildID snowflake.ID, name string) platform.Role {
	p.nextID++
	r := platform.Role{ID: p.nextID, Name: name}
	p.roles[guildID] = append(p.roles[guildID], r)
	return r
}
