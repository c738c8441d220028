package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
)

const employeesTable = "employees"

var employeeInsertColumns = []string{"employee_id", "name", "phone", "address", "email", "gender", "age"}

func scanEmployee(row interface{ Scan(...interface{}) error }) (models.Employee, error) {
	var e models.Employee
	var phone, address, email, gender sql.NullString
	var age sql.NullInt64
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.Name, &phone, &address, &email, &gender, &age); err != nil {
		return models.Employee{}, err
	}
	e.Phone = nullString(phone)
	e.Address = nullString(address)
	e.Email = nullString(email)
	e.Gender = nullString(gender)
	e.Age = nullInt(age)
	return e, nil
}

// ListEmployees returns employees matching every filter, ordered by id.
func (s *Store) ListEmployees(ctx context.Context, filters Filters, page Page) ([]models.Employee, error) {
	query, args := s.listQuery(employeesTable, models.EmployeeColumns, filters, page)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error) {
	query := "SELECT " + strings.Join(models.EmployeeColumns, ", ") + " FROM " + employeesTable +
		" WHERE employee_id = " + s.dialect.Placeholder(1)
	e, err := scanEmployee(s.db.QueryRowContext(ctx, query, employeeID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewRecordNotFoundError("Employee not found", employeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

// CreateEmployee validates and inserts e, returning it with its new id.
func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) (*models.Employee, error) {
	e.EmployeeID = strings.TrimSpace(e.EmployeeID)
	e.Email = blankToNil(e.Email)
	if e.EmployeeID == "" {
		return nil, apperrors.NewRequiredFieldMissingError("employee_id")
	}
	if strings.TrimSpace(e.Name) == "" {
		return nil, apperrors.NewRequiredFieldMissingError("name")
	}
	if e.Age != nil && *e.Age < 0 {
		return nil, apperrors.NewInvalidFieldValueError("age", "must not be negative")
	}

	taken, err := s.exists(ctx, employeesTable, "employee_id", e.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("check employee id: %w", err)
	}
	if taken {
		return nil, apperrors.NewDuplicateRecordError("employee_id", "Employee ID already registered")
	}
	if e.Email != nil {
		taken, err := s.exists(ctx, employeesTable, "email", *e.Email)
		if err != nil {
			return nil, fmt.Errorf("check employee email: %w", err)
		}
		if taken {
			return nil, apperrors.NewDuplicateRecordError("email", "Email already registered")
		}
	}

	err = s.db.QueryRowContext(ctx, s.insertQuery(employeesTable, employeeInsertColumns),
		e.EmployeeID, e.Name, e.Phone, e.Address, e.Email, e.Gender, e.Age,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicateRecordError("employee_id", "Employee ID already registered")
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return &e, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	deleted, err := s.deleteBy(ctx, employeesTable, "employee_id", employeeID)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if !deleted {
		return apperrors.NewRecordNotFoundError("Employee not found", employeeID)
	}
	return nil
}
