package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, "postgres")
	require.NoError(t, err)
	return s, mock
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(3))
	_, err := DialectFor("oracle")
	assert.Error(t, err)
}

func TestPostgres_ListEmployeesQuery(t *testing.T) {
	s, mock := newMockStore(t)

	filters, _ := NewFilters(models.EmployeeColumns, map[string]string{"name": "陳", "address": "台北市"})

	const query = `SELECT id, employee_id, name, phone, address, email, gender, age FROM employees ` +
		`WHERE CAST(address AS TEXT) ILIKE $1 ESCAPE '\' AND CAST(name AS TEXT) ILIKE $2 ESCAPE '\' ` +
		`ORDER BY id LIMIT $3 OFFSET $4`
	rows := sqlmock.NewRows([]string{"id", "employee_id", "name", "phone", "address", "email", "gender", "age"}).
		AddRow(1, "E001", "陳小明", nil, "台北市信義區", nil, "男", 30)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("%台北市%", "%陳%", 100, 0).
		WillReturnRows(rows)

	got, err := s.ListEmployees(context.Background(), filters, Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "陳小明", got[0].Name)
	assert.Equal(t, int64(30), *got[0].Age)
	assert.Nil(t, got[0].Phone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListEmployeesQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM employees ORDER BY id LIMIT $1 OFFSET $2`)).
		WithArgs(10, 20).
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListEmployees(context.Background(), nil, Page{Offset: 20, Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateEmployee(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM employees WHERE employee_id = $1 LIMIT 1`)).
		WithArgs("E001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM employees WHERE email = $1 LIMIT 1`)).
		WithArgs("chen@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	const insert = `INSERT INTO employees (employee_id, name, phone, address, email, gender, age) ` +
		`VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	mock.ExpectQuery(regexp.QuoteMeta(insert)).
		WithArgs("E001", "陳小明", nil, "台北市", "chen@example.com", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := s.CreateEmployee(context.Background(), models.Employee{
		EmployeeID: "E001",
		Name:       "陳小明",
		Address:    models.Ptr("台北市"),
		Email:      models.Ptr("chen@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateEmployeeUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM employees WHERE employee_id = $1 LIMIT 1`)).
		WithArgs("E001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "employees_employee_id_key"`))

	_, err := s.CreateEmployee(context.Background(), models.Employee{EmployeeID: "E001", Name: "陳小明"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicateRecord))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE order_id = $1`)).
		WithArgs("O-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE order_id = $1`)).
		WithArgs("O-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.DeleteOrder(context.Background(), "O-1"))
	assert.True(t, apperrors.HasCode(s.DeleteOrder(context.Background(), "O-2"), apperrors.ErrCodeRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_EnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS employees`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS ix_employees_name`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS orders`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS system_info`)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, escapeLike(`100%_off\`))
	assert.Equal(t, "台北市", escapeLike("台北市"))
}
