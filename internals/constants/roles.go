package constants

// Role names carried in the JWT "role" claim.
const (
	RoleUser    = "user"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)
