package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
)

const systemInfoTable = "system_info"

var systemInfoInsertColumns = []string{"system_name", "data_query_function_name", "filterable_columns", "frontend_route_name"}

func scanSystemInfo(row interface{ Scan(...interface{}) error }) (models.SystemInfo, error) {
	var info models.SystemInfo
	var columns, route sql.NullString
	if err := row.Scan(&info.ID, &info.SystemName, &info.DataQueryFunctionName, &columns, &route); err != nil {
		return models.SystemInfo{}, err
	}
	info.FilterableColumns = models.ParseFilterableColumns(nullString(columns))
	info.FrontendRouteName = nullString(route)
	return info, nil
}

func (s *Store) ListSystemInfo(ctx context.Context, filters Filters, page Page) ([]models.SystemInfo, error) {
	query, args := s.listQuery(systemInfoTable, models.SystemInfoColumns, filters, page)
	return s.querySystemInfo(ctx, query, args...)
}

// AllSystemInfo reads the whole catalogue, unpaged, in id order.
func (s *Store) AllSystemInfo(ctx context.Context) ([]models.SystemInfo, error) {
	query := "SELECT " + strings.Join(models.SystemInfoColumns, ", ") + " FROM " + systemInfoTable + " ORDER BY id"
	return s.querySystemInfo(ctx, query)
}

func (s *Store) querySystemInfo(ctx context.Context, query string, args ...interface{}) ([]models.SystemInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list system info: %w", err)
	}
	defer rows.Close()

	infos := []models.SystemInfo{}
	for rows.Next() {
		info, err := scanSystemInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan system info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *Store) GetSystemInfo(ctx context.Context, systemName string) (*models.SystemInfo, error) {
	query := "SELECT " + strings.Join(models.SystemInfoColumns, ", ") + " FROM " + systemInfoTable +
		" WHERE system_name = " + s.dialect.Placeholder(1)
	info, err := scanSystemInfo(s.db.QueryRowContext(ctx, query, systemName))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewRecordNotFoundError("System Info not found", systemName)
	}
	if err != nil {
		return nil, fmt.Errorf("get system info: %w", err)
	}
	return &info, nil
}

func (s *Store) CreateSystemInfo(ctx context.Context, info models.SystemInfo) (*models.SystemInfo, error) {
	info.SystemName = strings.TrimSpace(info.SystemName)
	info.DataQueryFunctionName = strings.TrimSpace(info.DataQueryFunctionName)
	info.FrontendRouteName = blankToNil(info.FrontendRouteName)
	if info.SystemName == "" {
		return nil, apperrors.NewRequiredFieldMissingError("system_name")
	}
	if info.DataQueryFunctionName == "" {
		return nil, apperrors.NewRequiredFieldMissingError("data_query_function_name")
	}

	taken, err := s.exists(ctx, systemInfoTable, "system_name", info.SystemName)
	if err != nil {
		return nil, fmt.Errorf("check system name: %w", err)
	}
	if taken {
		return nil, apperrors.NewDuplicateRecordError("system_name", "System Name already registered")
	}

	err = s.db.QueryRowContext(ctx, s.insertQuery(systemInfoTable, systemInfoInsertColumns),
		info.SystemName, info.DataQueryFunctionName,
		models.EncodeFilterableColumns(info.FilterableColumns), info.FrontendRouteName,
	).Scan(&info.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicateRecordError("system_name", "System Name already registered")
		}
		return nil, fmt.Errorf("insert system info: %w", err)
	}
	return &info, nil
}

func (s *Store) DeleteSystemInfo(ctx context.Context, systemName string) error {
	deleted, err := s.deleteBy(ctx, systemInfoTable, "system_name", systemName)
	if err != nil {
		return fmt.Errorf("delete system info: %w", err)
	}
	if !deleted {
		return apperrors.NewRecordNotFoundError("System Info not found", systemName)
	}
	return nil
}
