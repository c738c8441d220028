package models

// Employee is a row of the employee management system.
type Employee struct {
	ID         int64   `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Email      *string `json:"email"`
	Gender     *string `json:"gender"`
	Age        *int64  `json:"age"`
}

// EmployeeColumns lists the columns filters may address, in table order.
var EmployeeColumns = []string{"id", "employee_id", "name", "phone", "address", "email", "gender", "age"}

func (e Employee) SchemaName() string { return SchemaEmployee }

func (e Employee) ToRecord() Record {
	return Record{
		"id":          e.ID,
		"employee_id": e.EmployeeID,
		"name":        e.Name,
		"phone":       nullable(e.Phone),
		"address":     nullable(e.Address),
		"email":       nullable(e.Email),
		"gender":      nullable(e.Gender),
		"age":         nullable(e.Age),
	}
}
