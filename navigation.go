package protect

// RouteOnboarding is the route name of the initial onboarding screen the
// user is sent back to when their refresh token is no longer valid.
const RouteOnboarding = "ageConfirmation"

// Navigator lets the client signal the UI layer without holding a
// reference to a live navigation tree. The shell injects its own
// implementation via WithNavigator; tests inject fakes.
type Navigator interface {
	// CurrentRoute returns the name of the route currently shown.
	CurrentRoute() string
	// ResetToOnboarding replaces the navigation stack with the onboarding
	// screen. Called when the device must re-register.
	ResetToOnboarding()
}
