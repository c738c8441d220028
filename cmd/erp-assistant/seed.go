package main

import (
	"context"
	"fmt"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample employees, orders and the example system catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) ([]models.FunctionName, error) {
			created, err := seedSampleData(ctx, st)
			var touched []models.FunctionName
			if created > 0 {
				touched = []models.FunctionName{
					models.FunctionListSystemInfo,
					models.FunctionListEmployees,
					models.FunctionListOrders,
				}
			}
			if err != nil {
				return touched, err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records\n", created)
			return touched, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var (
	sampleSystems = []models.SystemInfo{
		{
			SystemName:            "員工管理",
			DataQueryFunctionName: string(models.FunctionListEmployees),
			FilterableColumns:     []string{"name", "address"},
			FrontendRouteName:     models.Ptr("employees"),
		},
		{
			SystemName:            "訂單管理",
			DataQueryFunctionName: string(models.FunctionListOrders),
			FilterableColumns:     []string{"order_id", "order_date"},
			FrontendRouteName:     models.Ptr("orders"),
		},
	}

	sampleEmployees = []models.Employee{
		{EmployeeID: "E001", Name: "陳小明", Phone: models.Ptr("0912-345-678"), Address: models.Ptr("台北市信義區"), Email: models.Ptr("xiaoming.chen@example.com"), Gender: models.Ptr("男"), Age: models.Ptr(int64(30))},
		{EmployeeID: "E002", Name: "陳大華", Phone: models.Ptr("0922-111-222"), Address: models.Ptr("新北市板橋區"), Email: models.Ptr("dahua.chen@example.com"), Gender: models.Ptr("男"), Age: models.Ptr(int64(45))},
		{EmployeeID: "E003", Name: "林美玲", Phone: models.Ptr("0933-555-666"), Address: models.Ptr("台北市大安區"), Email: models.Ptr("meiling.lin@example.com"), Gender: models.Ptr("女"), Age: models.Ptr(int64(28))},
		{EmployeeID: "E004", Name: "王志強", Address: models.Ptr("台中市西屯區"), Gender: models.Ptr("男"), Age: models.Ptr(int64(38))},
	}

	sampleOrders = []models.Order{
		{OrderID: "O-20240105-001", OrderDate: "2024-01-05", OrderAmount: models.Ptr(int64(12000))},
		{OrderID: "O-20240212-002", OrderDate: "2024-02-12", OrderAmount: models.Ptr(int64(3500))},
		{OrderID: "O-20240301-003", OrderDate: "2024-03-01"},
	}
)

// seedSampleData inserts the sample rows, skipping those already present,
// and returns how many were created.
func seedSampleData(ctx context.Context, st *store.Store) (int, error) {
	created := 0
	add := func(err error) error {
		switch {
		case err == nil:
			created++
			return nil
		case apperrors.HasCode(err, apperrors.ErrCodeDuplicateRecord):
			return nil
		default:
			return err
		}
	}

	for _, info := range sampleSystems {
		_, err := st.CreateSystemInfo(ctx, info)
		if err := add(err); err != nil {
			return created, err
		}
	}
	for _, e := range sampleEmployees {
		_, err := st.CreateEmployee(ctx, e)
		if err := add(err); err != nil {
			return created, err
		}
	}
	for _, o := range sampleOrders {
		_, err := st.CreateOrder(ctx, o)
		if err := add(err); err != nil {
			return created, err
		}
	}
	return created, nil
}
