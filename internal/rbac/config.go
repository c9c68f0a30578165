package rbac

import "fmt"

// Config declares which roles may perform which action on which resource.
type Config struct {
	Roles        []Role
	Resources    []Resource
	Actions      []Action
	Capabilities map[Role]map[Resource][]Action
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}
	if len(c.Resources) == 0 {
		return fmt.Errorf(errConfigResourcesEmpty)
	}
	if len(c.Actions) == 0 {
		return fmt.Errorf(errConfigActionsEmpty)
	}
	if len(c.Capabilities) == 0 {
		return fmt.Errorf(errConfigCapabilitiesEmpty)
	}

	roleSet := make(map[Role]bool, len(c.Roles))
	for _, r := range c.Roles {
		if r == "" {
			return fmt.Errorf(errConfigRoleNameEmpty)
		}
		if roleSet[r] {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, r)
		}
		roleSet[r] = true
	}

	resSet := make(map[Resource]bool, len(c.Resources))
	for _, r := range c.Resources {
		if r == "" {
			return fmt.Errorf(errConfigResourceEmpty)
		}
		if resSet[r] {
			return fmt.Errorf(errConfigDuplicateResourceFmt, r)
		}
		resSet[r] = true
	}

	actSet := make(map[Action]bool, len(c.Actions))
	for _, a := range c.Actions {
		if a == "" {
			return fmt.Errorf(errConfigActionEmpty)
		}
		if actSet[a] {
			return fmt.Errorf(errConfigDuplicateActionFmt, a)
		}
		actSet[a] = true
	}

	for role, resources := range c.Capabilities {
		if !roleSet[role] {
			return fmt.Errorf(errConfigCapabilityUnknownRoleFmt, role)
		}
		for res, actions := range resources {
			if !resSet[res] {
				return fmt.Errorf(errConfigCapabilityUnknownResourceFmt, role, res)
			}
			for _, act := range actions {
				if !actSet[act] {
					return fmt.Errorf(errConfigCapabilityUnknownActionFmt, role, res, act)
				}
			}
		}
	}

	return nil
}
