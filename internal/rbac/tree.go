package rbac

import "github.com/google/uuid"

type grantKey struct {
	module uuid.UUID
	sub    uuid.UUID // uuid.Nil for direct module-level grants
	action uuid.UUID
}

type subKey struct {
	module uuid.UUID
	sub    uuid.UUID
}

// GrantSet indexes a role+channel grant list for constant-time membership
// checks at each tree level.
type GrantSet struct {
	exact     map[grantKey]struct{}
	byModule  map[uuid.UUID]struct{}
	bySub     map[subKey]struct{}
}

// NewGrantSet builds the three-level index from flat grant rows.
func NewGrantSet(grants []Grant) GrantSet {
	s := GrantSet{
		exact:    make(map[grantKey]struct{}, len(grants)),
		byModule: make(map[uuid.UUID]struct{}),
		bySub:    make(map[subKey]struct{}),
	}
	for _, g := range grants {
		sub := uuid.Nil
		if g.SubModuleID.Valid {
			sub = g.SubModuleID.UUID
		}
		s.exact[grantKey{module: g.ModuleID, sub: sub, action: g.ActionID}] = struct{}{}
		s.byModule[g.ModuleID] = struct{}{}
		if g.SubModuleID.Valid {
			s.bySub[subKey{module: g.ModuleID, sub: sub}] = struct{}{}
		}
	}
	return s
}

// HasModule reports whether any grant exists under the module.
func (s GrantSet) HasModule(moduleID uuid.UUID) bool {
	_, ok := s.byModule[moduleID]
	return ok
}

// HasSubModule reports whether any grant exists under the sub-module.
func (s GrantSet) HasSubModule(moduleID, subModuleID uuid.UUID) bool {
	_, ok := s.bySub[subKey{module: moduleID, sub: subModuleID}]
	return ok
}

// HasAction reports whether the exact grant tuple exists. Pass uuid.Nil as
// subModuleID for direct module-level grants.
func (s GrantSet) HasAction(moduleID, subModuleID, actionID uuid.UUID) bool {
	_, ok := s.exact[grantKey{module: moduleID, sub: subModuleID, action: actionID}]
	return ok
}

// BuildTree materialises the checkbox tree for one role+channel pair from the
// channel's module/sub-module catalog, the full action catalog, and the
// role's grant rows. The catalog supplies the universal sets so ungranted
// entries still appear unchecked; the grant set only flips Checked flags.
func BuildTree(modules []Module, subModules []SubModule, actions []Action, grants []Grant) []ModuleNode {
	set := NewGrantSet(grants)

	subsByModule := make(map[uuid.UUID][]SubModule)
	for _, sm := range subModules {
		subsByModule[sm.ModuleID] = append(subsByModule[sm.ModuleID], sm)
	}

	nodes := make([]ModuleNode, 0, len(modules))
	for _, m := range modules {
		node := ModuleNode{
			ID:      m.ID,
			Name:    m.Name,
			Checked: set.HasModule(m.ID),
		}
		subs := subsByModule[m.ID]
		if len(subs) == 0 {
			node.Actions = actionNodes(actions, func(a Action) bool {
				return set.HasAction(m.ID, uuid.Nil, a.ID)
			})
		} else {
			node.SubModules = make([]SubModuleNode, 0, len(subs))
			for _, sm := range subs {
				node.SubModules = append(node.SubModules, SubModuleNode{
					ID:      sm.ID,
					Name:    sm.Name,
					Checked: set.HasSubModule(m.ID, sm.ID),
					Actions: actionNodes(actions, func(a Action) bool {
						return set.HasAction(m.ID, sm.ID, a.ID)
					}),
				})
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func actionNodes(actions []Action, checked func(Action) bool) []ActionNode {
	nodes := make([]ActionNode, 0, len(actions))
	for _, a := range actions {
		nodes = append(nodes, ActionNode{ID: a.ID, Name: a.Name, Checked: checked(a)})
	}
	return nodes
}
