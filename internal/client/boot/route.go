package boot

import "github.com/lingopal/lingopal-client/internal/client/token"

// RouteName is the closed set of initial screens.
type RouteName string

const (
	RouteAuth            RouteName = "Auth"
	RouteAppLaunch       RouteName = "AppLaunch"
	RouteSetupInit       RouteName = "SetupInit"
	RouteProficiencyTest RouteName = "ProficiencyTest"
	RouteDailyWelcome    RouteName = "DailyWelcome"
	RouteTabApp          RouteName = "TabApp"
	RouteAdmin           RouteName = "Admin"
	RouteTeacher         RouteName = "Teacher"
)

// HomeTab is the tab selected when routing into the main tab app.
const HomeTab = "Home"

// Route is one computed initial-route decision. It is produced once per
// boot and never mutated, only superseded by the next boot.
type Route struct {
	Name RouteName
	// SkipToAuth applies to AppLaunch: jump past the marketing slides
	// straight to the sign-in entry.
	SkipToAuth bool
	// Tab applies to TabApp.
	Tab string
	// ResetStack asks the navigation host to reset its stack to the tab
	// instead of waiting for user action.
	ResetStack bool
}

// Decide is the pure route-decision function. It inspects token validity,
// the decoded claims, the boot flags, and whether this is the first open
// of the day; it touches no storage and no network, which keeps the whole
// decision table unit-testable.
//
// Precedence for a valid session: setup gate first, then roles, then the
// placement test, then daily-welcome/home.
func Decide(tokenValid bool, claims *token.Claims, flags Flags, firstOpenToday bool) Route {
	if !tokenValid {
		// hasLoggedIn here means a previously-authenticated session that
		// could not be restored; hasFinishedOnboarding means the slides
		// were already seen. Both skip straight to quick entry.
		if flags.HasLoggedIn || flags.HasFinishedOnboarding {
			return Route{Name: RouteAppLaunch, SkipToAuth: true}
		}
		return Route{Name: RouteAppLaunch}
	}

	if !flags.HasFinishedSetup {
		// A user must complete setup before anything else, roles included.
		return Route{Name: RouteSetupInit}
	}

	if claims != nil && claims.HasRole(token.RoleAdmin) {
		return Route{Name: RouteAdmin}
	}
	if claims != nil && claims.HasRole(token.RoleTeacher) {
		return Route{Name: RouteTeacher}
	}

	if !flags.HasDonePlacementTest {
		return Route{Name: RouteProficiencyTest}
	}
	if firstOpenToday {
		return Route{Name: RouteDailyWelcome}
	}
	return Route{Name: RouteTabApp, Tab: HomeTab, ResetStack: true}
}
