package rbac

import "github.com/colloki/console/internal/shared"

// NavItem is a node of the console navigation tree. Group nodes carry Children
// and no Path.
type NavItem struct {
	TitleKey    string              `json:"titleKey"`
	Path        string              `json:"path,omitempty"`
	Icon        string              `json:"icon"`
	Permissions []shared.Permission `json:"permission"`
	Children    []NavItem           `json:"children,omitempty"`
}

// IsGroup reports whether the item has children.
func (n NavItem) IsGroup() bool {
	return len(n.Children) > 0
}

// FilterNavigation returns the part of tree p may see. A group is kept when its own
// permission check passes, and its children are filtered independently; a group whose
// children all drop out is still kept. The input is never modified.
//
// Checks use HasPermission (any-of). Leaves listing several permissions are therefore
// shown when any one is held; callers wanting all-of semantics should split the leaf.
// An item with no permissions is public: every signed-in role sees it, anonymous
// callers do not.
func (e *Engine) FilterNavigation(tree []NavItem, p Principal) []NavItem {
	out := make([]NavItem, 0, len(tree))
	for _, item := range tree {
		if !e.HasPermission(p, item.Permissions...) {
			continue
		}
		kept := item
		kept.Permissions = append([]shared.Permission(nil), item.Permissions...)
		if item.Children != nil {
			kept.Children = e.FilterNavigation(item.Children, p)
		}
		out = append(out, kept)
	}
	return out
}

// DefaultNavigation is the console sidebar.
func DefaultNavigation() []NavItem {
	return []NavItem{
		{TitleKey: "sidebar.dashboard", Path: "/dashboard", Icon: "dashboard", Permissions: []shared.Permission{shared.PermDashboardView}},
		{
			TitleKey:    "sidebar.security",
			Icon:        "shield",
			Permissions: []shared.Permission{shared.PermUsersView, shared.PermRolesView, shared.PermAuditLogsView},
			Children: []NavItem{
				{TitleKey: "sidebar.users", Path: "/security/users", Icon: "users", Permissions: []shared.Permission{shared.PermUsersView}},
				{TitleKey: "sidebar.roles", Path: "/security/roles", Icon: "key", Permissions: []shared.Permission{shared.PermRolesView}},
				{TitleKey: "sidebar.auditLogs", Path: "/security/audit-logs", Icon: "list", Permissions: []shared.Permission{shared.PermAuditLogsView}},
			},
		},
		{
			TitleKey:    "sidebar.commonSettings",
			Icon:        "settings",
			Permissions: []shared.Permission{shared.PermSettingsView},
			Children: []NavItem{
				{TitleKey: "settings.tabs.branding", Path: "/settings/branding", Icon: "palette", Permissions: []shared.Permission{shared.PermSettingsView}},
				{TitleKey: "settings.tabs.general", Path: "/settings/general", Icon: "sliders", Permissions: []shared.Permission{shared.PermSettingsView}},
				{TitleKey: "settings.tabs.security", Path: "/settings/security", Icon: "lock", Permissions: []shared.Permission{shared.PermSettingsView}},
				{TitleKey: "settings.tabs.notifications", Path: "/settings/notifications", Icon: "bell", Permissions: []shared.Permission{shared.PermSettingsView}},
				{TitleKey: "settings.tabs.integrations", Path: "/settings/integrations", Icon: "plug", Permissions: []shared.Permission{shared.PermSettingsManage}},
			},
		},
		{TitleKey: "sidebar.fileSystem", Path: "/file-system", Icon: "folder", Permissions: []shared.Permission{shared.PermFilesView}},
		{TitleKey: "sidebar.channelConfiguration", Path: "/channel-configuration", Icon: "broadcast", Permissions: []shared.Permission{shared.PermSettingsManage}},
	}
}
