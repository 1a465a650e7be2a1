package telemetry

import "context"

// Restricted categories a user can opt out of.
const (
	CategoryConfig   = "config"
	CategoryActivity = "activity"
)

// restrictedKinds maps each restricted event kind to its category. Kinds
// not listed here are always recorded.
var restrictedKinds = map[string]string{
	KindConfiguration:    CategoryConfig,
	KindInstallationDate: CategoryActivity,
	KindBookmarks:        CategoryActivity,
	KindAction:           CategoryActivity,
}

// RestrictedCategory returns the category kind belongs to, if any.
func RestrictedCategory(kind string) (string, bool) {
	category, ok := restrictedKinds[kind]
	return category, ok
}

// Gate decides whether an event may enter the stack.
type Gate struct {
	// DevMode drops every event.
	DevMode bool
	// Permissions returns the current share permissions. It is only called
	// for restricted kinds.
	Permissions func(ctx context.Context) SharePermissions
}

// Allow reports whether an event of kind may be recorded. ignorePreference
// bypasses the share permissions for values that are not sensitive.
func (g Gate) Allow(ctx context.Context, kind string, ignorePreference bool) bool {
	if g.DevMode {
		return false
	}
	if ignorePreference {
		return true
	}

	category, restricted := restrictedKinds[kind]
	if !restricted {
		return true
	}
	if g.Permissions == nil {
		return false
	}

	perms := g.Permissions(ctx)
	switch category {
	case CategoryConfig:
		return perms.Config
	case CategoryActivity:
		return perms.Activity
	default:
		return false
	}
}
