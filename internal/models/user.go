package models

// UserRole represents the roles carried in access tokens issued by the account service.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleProvider UserRole = "PROVIDER"
	RoleCustomer UserRole = "CUSTOMER"
)
