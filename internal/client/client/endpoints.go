package client

// API paths relative to the configured base URL.
const (
	PathLogin          = "/users/login"
	PathSignup         = "/users/signup"
	PathChangePassword = "/users/change-password"
	PathResetPassword  = "/users/reset-password"
	PathUsers          = "/users/users"
	PathAchievements   = "/users/achievement"
	PathActivities     = "/users/activities"
	PathMedia          = "/users/media"
	PathLeaders        = "/users/leaders"
	PathMembers        = "/users/member"
	PathMembership     = "/users/membership"
	PathDonations      = "/users/donations"
	PathVolunteers     = "/users/volunteer"
	PathPartners       = "/users/partners"
	PathNewsletter     = "/users/newsletter"
)
