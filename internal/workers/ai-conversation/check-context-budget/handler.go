package checkcontextbudget

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/metrics"
	"erp-assistant/internal/models"
)

const (
	TaskType = "check-context-budget"
)

// Guard enforces the character budget on each successful dispatch entry.
// It is stateless and safe for concurrent use.
type Guard struct {
	config *Config
	logger logger.Logger
}

func NewGuard(config *Config, log logger.Logger) *Guard {
	if config.Budget <= 0 {
		config.Budget = DefaultBudget
	}
	return &Guard{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (g *Guard) Budget() int {
	return g.config.Budget
}

// Size is the character count of the entry's records encoded with ", " and
// ": " separators. Failed entries have size zero.
func Size(entry models.DispatchEntry) int {
	if entry.Failed() {
		return 0
	}
	records := entry.Records
	if records == nil {
		records = []models.Record{}
	}
	raw, err := models.SpacedJSON(records)
	if err != nil {
		return 0
	}
	return utf8.RuneCount(raw)
}

// Exceeds reports whether a single entry is over budget.
func (g *Guard) Exceeds(entry models.DispatchEntry) bool {
	return Size(entry) > g.config.Budget
}

// Check returns Refine for the first entry over budget, Proceed otherwise.
func (g *Guard) Check(result models.DispatchResult) Decision {
	for _, entry := range result.Entries {
		size := Size(entry)
		if size <= g.config.Budget {
			continue
		}
		metrics.RefinementsRequested.WithLabelValues(entry.SystemLabel).Inc()
		g.logger.Warn("dispatch result over context budget", map[string]interface{}{
			"systemName":   entry.SystemLabel,
			"functionName": entry.FunctionName,
			"size":         size,
			"budget":       g.config.Budget,
		})
		return Decision{
			Outcome:           OutcomeRefine,
			SystemLabel:       entry.SystemLabel,
			FunctionName:      entry.FunctionName,
			FilterableColumns: entry.FilterableColumns,
			Size:              size,
		}
	}
	return Decision{Outcome: OutcomeProceed}
}

// RefinementMessage asks the user to narrow the query of decision's system.
func RefinementMessage(decision Decision) string {
	columns := "無"
	if len(decision.FilterableColumns) > 0 {
		columns = strings.Join(decision.FilterableColumns, "、")
	}
	return fmt.Sprintf("您查詢的 '%s' 資料量過大，無法直接回答。\n請提供更具體的篩選條件，您可以針對以下欄位進行篩選：%s",
		decision.SystemLabel, columns)
}

func (g *Guard) Execute(_ context.Context, input *Input) (*Output, error) {
	decision := g.Check(input.Result)
	out := &Output{Decision: decision}
	if decision.Refine() {
		out.Message = RefinementMessage(decision)
	}
	return out, nil
}
