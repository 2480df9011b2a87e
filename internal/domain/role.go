package domain

// Role names carried in JWT claims and on User.Role.
const (
	RoleAdmin     = "admin"
	RoleAttendee  = "attendee"
	RoleSpeaker   = "speaker"
	RoleVolunteer = "volunteer"
)
