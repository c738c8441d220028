package main

import (
	"context"
	"fmt"
	"strings"

	"erp-assistant/internal/common/cache"
	"erp-assistant/internal/common/config"
	"erp-assistant/internal/common/database"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"
	queryinternaldata "erp-assistant/internal/workers/ai-conversation/query-internal-data"

	"github.com/spf13/cobra"
)

var systemInfoCmd = &cobra.Command{
	Use:   "system-info",
	Short: "Manage the system catalogue the assistant answers from",
	Long: `List, add and delete SystemInfo rows. A running server reads the
catalogue once at startup, so restart it after changes.`,
}

var systemInfoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every SystemInfo",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) ([]models.FunctionName, error) {
			infos, err := st.AllSystemInfo(ctx)
			if err != nil {
				return nil, err
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No SystemInfo found.")
				return nil, nil
			}
			for _, info := range infos {
				columns := "無"
				if len(info.FilterableColumns) > 0 {
					columns = strings.Join(info.FilterableColumns, "、")
				}
				route := info.Route()
				if route == "" {
					route = "無"
				}
				fmt.Fprintf(out, "- %s: function=%s columns=%s route=%s\n", info.SystemName, info.DataQueryFunctionName, columns, route)
			}
			return nil, nil
		})
	},
}

var systemInfoAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a SystemInfo",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		function, _ := cmd.Flags().GetString("function")
		columns, _ := cmd.Flags().GetStringSlice("columns")
		route, _ := cmd.Flags().GetString("route")

		info := models.SystemInfo{
			SystemName:            name,
			DataQueryFunctionName: function,
			FilterableColumns:     columns,
		}
		if route != "" {
			info.FrontendRouteName = models.Ptr(route)
		}

		return withStore(cmd, func(ctx context.Context, st *store.Store) ([]models.FunctionName, error) {
			created, err := st.CreateSystemInfo(ctx, info)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added SystemInfo '%s' (id %d)\n", created.SystemName, created.ID)
			return []models.FunctionName{models.FunctionListSystemInfo}, nil
		})
	},
}

var systemInfoDeleteCmd = &cobra.Command{
	Use:   "delete <system-name>...",
	Short: "Delete one or more SystemInfo rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) ([]models.FunctionName, error) {
			var touched []models.FunctionName
			for _, name := range args {
				if err := st.DeleteSystemInfo(ctx, name); err != nil {
					return touched, err
				}
				touched = []models.FunctionName{models.FunctionListSystemInfo}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted SystemInfo '%s'\n", name)
			}
			return touched, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(systemInfoCmd)
	systemInfoCmd.AddCommand(systemInfoListCmd, systemInfoAddCmd, systemInfoDeleteCmd)

	systemInfoAddCmd.Flags().String("name", "", "System name shown to the model, e.g. 員工管理")
	systemInfoAddCmd.Flags().String("function", "", "Query function, e.g. list-employees")
	systemInfoAddCmd.Flags().StringSlice("columns", nil, "Filterable columns, comma separated")
	systemInfoAddCmd.Flags().String("route", "", "Frontend route name")
	_ = systemInfoAddCmd.MarkFlagRequired("name")
	_ = systemInfoAddCmd.MarkFlagRequired("function")
}

// withStore runs fn against the configured record store. fn returns the
// query functions whose results its writes changed, even when it fails
// part way.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) ([]models.FunctionName, error)) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg, true)

	ctx := context.Background()
	client, st, err := openStore(ctx, cfg, log, 3)
	if err != nil {
		return err
	}
	defer client.Close()

	touched, err := fn(ctx, st)
	if cacheErr := invalidateDispatchCache(ctx, cfg, log, touched...); cacheErr != nil {
		log.Warn("dispatch cache not invalidated, a running server may answer from stale results until they expire", map[string]interface{}{
			"functions": touched,
			"error":     cacheErr,
		})
	}
	return err
}

// invalidateDispatchCache drops the cached dispatch results of functions so
// that a running server sees writes made from the command line.
func invalidateDispatchCache(ctx context.Context, cfg *config.Config, log logger.Logger, functions ...models.FunctionName) error {
	if !cfg.Database.Redis.Enabled() || len(functions) == 0 {
		return nil
	}

	client := database.NewRedis(cfg.Database.Redis)
	defer client.Close()

	resultCache := cache.NewRedisCache(client.Client, queryinternaldata.CachePrefix, config.GetDuration(cfg.Assistant.CacheTTL))
	dispatcher := queryinternaldata.NewHandler(queryinternaldata.LoadConfig(), resultCache, log)
	for _, fn := range functions {
		if err := dispatcher.Invalidate(ctx, fn.String()); err != nil {
			return err
		}
	}
	return nil
}
