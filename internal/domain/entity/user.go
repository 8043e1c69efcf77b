package entity

// Roles válidos en el token JWT.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleService  = "service" // checkout u otros servicios internos
	RoleCustomer = "customer"
)
