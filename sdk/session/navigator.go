package session

// LoginView is the name of the view a Navigator reports while the login view
// is current.
const LoginView = "login"

// Navigator is implemented by front ends that the Store steers to the login
// view when the API server rejects the current session.
type Navigator interface {
	// CurrentView returns the name of the view that is currently displayed.
	CurrentView() string
	// NavigateToLogin displays the login view.
	NavigateToLogin()
}

type nopNavigator struct{}

func (nopNavigator) CurrentView() string {
	return LoginView
}

func (nopNavigator) NavigateToLogin() {}
