package entity

type EmployeeLoginData struct {
	ID        string
	Email     string
	CompanyID string
	Role      string
}

const (
	RoleEmployee = "employee"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)
