package rbac

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore mirrors PGStore semantics in memory, including the soft-delete
// filtering on every read path.
type memStore struct {
	channels   map[uuid.UUID]Channel
	roles      map[uuid.UUID]Role
	modules    []Module
	subModules []SubModule
	actions    []Action

	deleted map[uuid.UUID]bool // soft-deleted catalog ids

	grants map[[2]uuid.UUID][]Grant // keyed by (role, channel)

	insertErr error
	findCalls int
}

func newMemStore() *memStore {
	return &memStore{
		channels: make(map[uuid.UUID]Channel),
		roles:    make(map[uuid.UUID]Role),
		deleted:  make(map[uuid.UUID]bool),
		grants:   make(map[[2]uuid.UUID][]Grant),
	}
}

func (m *memStore) addChannel(name string) uuid.UUID {
	id := uuid.New()
	m.channels[id] = Channel{ID: id, Name: name}
	return id
}

func (m *memStore) addRole(name string) uuid.UUID {
	id := uuid.New()
	m.roles[id] = Role{ID: id, Name: name}
	return id
}

func (m *memStore) addModule(name string, channelID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.modules = append(m.modules, Module{ID: id, Name: name, ChannelID: channelID})
	return id
}

func (m *memStore) addSubModule(name string, moduleID, channelID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.subModules = append(m.subModules, SubModule{ID: id, Name: name, ModuleID: moduleID, ChannelID: channelID})
	return id
}

func (m *memStore) addAction(name string) uuid.UUID {
	id := uuid.New()
	m.actions = append(m.actions, Action{ID: id, Name: name})
	return id
}

func (m *memStore) grant(g Grant) {
	key := [2]uuid.UUID{g.RoleID, g.ChannelID}
	m.grants[key] = append(m.grants[key], g)
}

func (m *memStore) ListModules(ctx context.Context, channelID uuid.UUID) ([]Module, error) {
	if m.deleted[channelID] {
		return nil, nil
	}
	var out []Module
	for _, mod := range m.modules {
		if mod.ChannelID == channelID && !m.deleted[mod.ID] {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (m *memStore) ListSubModules(ctx context.Context, channelID uuid.UUID) ([]SubModule, error) {
	var out []SubModule
	for _, sm := range m.subModules {
		if sm.ChannelID == channelID && !m.deleted[sm.ID] {
			out = append(out, sm)
		}
	}
	return out, nil
}

func (m *memStore) ListActions(ctx context.Context) ([]Action, error) {
	var out []Action
	for _, a := range m.actions {
		if !m.deleted[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) live(g Grant) bool {
	if m.deleted[g.ModuleID] || m.deleted[g.ChannelID] || m.deleted[g.RoleID] || m.deleted[g.ActionID] {
		return false
	}
	if g.SubModuleID.Valid && m.deleted[g.SubModuleID.UUID] {
		return false
	}
	return true
}

func (m *memStore) ListGrants(ctx context.Context, roleID, channelID uuid.UUID) ([]Grant, error) {
	var out []Grant
	for _, g := range m.grants[[2]uuid.UUID{roleID, channelID}] {
		if m.live(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) FindGrant(ctx context.Context, q GrantQuery) (bool, error) {
	m.findCalls++
	for key, grants := range m.grants {
		if key[0] != q.RoleID {
			continue
		}
		for _, g := range grants {
			if !m.live(g) {
				continue
			}
			if m.channels[g.ChannelID].Name != q.Channel {
				continue
			}
			if m.moduleName(g.ModuleID) != q.Module {
				continue
			}
			if m.actionName(g.ActionID) != q.Action {
				continue
			}
			if q.SubModule == "" {
				if g.SubModuleID.Valid {
					continue
				}
			} else if !g.SubModuleID.Valid || m.subModuleName(g.SubModuleID.UUID) != q.SubModule {
				continue
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ReplaceGrants(ctx context.Context, roleID, channelID uuid.UUID, grants []Grant) error {
	if m.insertErr != nil && len(grants) > 0 {
		// Simulates rollback: the prior set stays authoritative.
		return m.insertErr
	}
	m.grants[[2]uuid.UUID{roleID, channelID}] = append([]Grant(nil), grants...)
	return nil
}

func (m *memStore) ListGrantGroups(ctx context.Context, roleID uuid.NullUUID) ([]GrantGroup, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) ListRolesOnChannels(ctx context.Context) ([]RoleOnChannel, error) {
	var out []RoleOnChannel
	seen := make(map[[2]uuid.UUID]bool)
	for key, grants := range m.grants {
		if len(grants) == 0 || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, RoleOnChannel{
			RoleID:    key[0],
			Role:      m.roles[key[0]].Name,
			ChannelID: key[1],
			Channel:   m.channels[key[1]].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (m *memStore) moduleName(id uuid.UUID) string {
	for _, mod := range m.modules {
		if mod.ID == id {
			return mod.Name
		}
	}
	return ""
}

func (m *memStore) subModuleName(id uuid.UUID) string {
	for _, sm := range m.subModules {
		if sm.ID == id {
			return sm.Name
		}
	}
	return ""
}

func (m *memStore) actionName(id uuid.UUID) string {
	for _, a := range m.actions {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}

var _ Store = (*memStore)(nil)
