package checkcontextbudget

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsOfSize(t *testing.T, size int) []models.Record {
	t.Helper()
	// [{"v": "..."}] adds 11 characters around the value.
	records := []models.Record{{"v": strings.Repeat("陳", size-11)}}
	require.Equal(t, size, Size(models.DispatchEntry{Records: records}))
	return records
}

func newTestGuard(t *testing.T, budget int) *Guard {
	return NewGuard(&Config{Budget: budget}, logger.NewTestLogger(t))
}

func TestSize(t *testing.T) {
	assert.Equal(t, 2, Size(models.DispatchEntry{}))
	assert.Equal(t, 0, Size(models.DispatchEntry{Error: "失敗"}))
	assert.Equal(t, len(`[{"name": "A&B"}]`), Size(models.DispatchEntry{Records: []models.Record{{"name": "A&B"}}}))
	assert.Equal(t, len(`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`), Size(models.DispatchEntry{Records: []models.Record{
		{"id": int64(1), "name": "A"},
		{"id": int64(2), "name": "B"},
	}}))
	// Characters, not bytes.
	assert.Equal(t, 16, Size(models.DispatchEntry{Records: []models.Record{{"name": "台北"}}}))
}

func sampleEmployees(n int) []models.Record {
	records := make([]models.Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, models.Employee{
			ID:         int64(i),
			EmployeeID: fmt.Sprintf("E%03d", i),
			Name:       "陳小明",
			Phone:      models.Ptr("0912-345-678"),
			Address:    models.Ptr("台北市信義區"),
			Email:      models.Ptr(fmt.Sprintf("user%03d@example.com", i)),
			Gender:     models.Ptr("男"),
			Age:        models.Ptr(int64(30)),
		}.ToRecord())
	}
	return records
}

func TestSize_EmployeeRecords(t *testing.T) {
	one := sampleEmployees(1)
	want := `[{"address": "台北市信義區", "age": 30, "email": "user001@example.com", "employee_id": "E001", ` +
		`"gender": "男", "id": 1, "name": "陳小明", "phone": "0912-345-678"}]`
	assert.Equal(t, utf8.RuneCountInString(want), Size(models.DispatchEntry{Records: one}))

	// Eight fields add seven ", " and eight ": " per record, plus ", " between records.
	const n = 53
	records := sampleEmployees(n)
	compact, err := models.CompactJSON(records)
	require.NoError(t, err)
	size := Size(models.DispatchEntry{Records: records})
	assert.Equal(t, utf8.RuneCount(compact)+n*15+n-1, size)

	g := newTestGuard(t, DefaultBudget)
	entry := models.DispatchEntry{SystemLabel: "員工管理", FunctionName: "list-employees", Records: records}
	require.Less(t, utf8.RuneCount(compact), DefaultBudget)
	require.Greater(t, size, DefaultBudget)
	assert.True(t, g.Check(models.DispatchResult{Entries: []models.DispatchEntry{entry}}).Refine())

	atBudget := newTestGuard(t, size)
	assert.False(t, atBudget.Check(models.DispatchResult{Entries: []models.DispatchEntry{entry}}).Refine())
	assert.True(t, newTestGuard(t, size-1).Exceeds(entry))
}

func TestGuard_Check(t *testing.T) {
	g := newTestGuard(t, 100)

	small := models.DispatchEntry{SystemLabel: "訂單管理", FunctionName: "list-orders", Records: recordsOfSize(t, 100)}
	big := models.DispatchEntry{SystemLabel: "員工管理", FunctionName: "list-employees", Records: recordsOfSize(t, 101), FilterableColumns: []string{"name", "address"}}
	bigger := models.DispatchEntry{SystemLabel: "系統資訊", FunctionName: "list-system-info", Records: recordsOfSize(t, 500)}
	failed := models.DispatchEntry{SystemLabel: "X", FunctionName: "get_foobar", Error: strings.Repeat("錯", 500)}

	t.Run("exactly at budget proceeds", func(t *testing.T) {
		d := g.Check(models.DispatchResult{Entries: []models.DispatchEntry{small}})
		assert.Equal(t, OutcomeProceed, d.Outcome)
		assert.False(t, d.Refine())
	})

	t.Run("budget is per entry", func(t *testing.T) {
		d := g.Check(models.DispatchResult{Entries: []models.DispatchEntry{small, small, small}})
		assert.False(t, d.Refine())
	})

	t.Run("error entries never exceed", func(t *testing.T) {
		d := g.Check(models.DispatchResult{Entries: []models.DispatchEntry{failed}})
		assert.False(t, d.Refine())
	})

	t.Run("first offender wins", func(t *testing.T) {
		d := g.Check(models.DispatchResult{Entries: []models.DispatchEntry{small, big, bigger}})
		require.True(t, d.Refine())
		assert.Equal(t, "員工管理", d.SystemLabel)
		assert.Equal(t, "list-employees", d.FunctionName)
		assert.Equal(t, []string{"name", "address"}, d.FilterableColumns)
		assert.Equal(t, 101, d.Size)
	})

	t.Run("empty result proceeds", func(t *testing.T) {
		assert.False(t, g.Check(models.DispatchResult{}).Refine())
	})

	assert.True(t, g.Exceeds(big))
	assert.False(t, g.Exceeds(small))
}

func TestNewGuard_DefaultBudget(t *testing.T) {
	g := NewGuard(&Config{}, logger.NewNoOpLogger())
	assert.Equal(t, DefaultBudget, g.Budget())
	assert.Equal(t, 8000, LoadConfig().Budget)
}

func TestRefinementMessage(t *testing.T) {
	assert.Equal(t,
		"您查詢的 '員工管理' 資料量過大，無法直接回答。\n請提供更具體的篩選條件，您可以針對以下欄位進行篩選：name、address",
		RefinementMessage(Decision{Outcome: OutcomeRefine, SystemLabel: "員工管理", FilterableColumns: []string{"name", "address"}}))

	assert.Equal(t,
		"您查詢的 '訂單管理' 資料量過大，無法直接回答。\n請提供更具體的篩選條件，您可以針對以下欄位進行篩選：無",
		RefinementMessage(Decision{Outcome: OutcomeRefine, SystemLabel: "訂單管理"}))
}

func TestGuard_Execute(t *testing.T) {
	g := newTestGuard(t, 10)

	out, err := g.Execute(context.Background(), &Input{Result: models.DispatchResult{Entries: []models.DispatchEntry{
		{SystemLabel: "員工管理", Records: []models.Record{{"name": "陳小明"}}},
	}}})
	require.NoError(t, err)
	assert.True(t, out.Decision.Refine())
	assert.Contains(t, out.Message, "員工管理")

	out, err = g.Execute(context.Background(), &Input{Result: models.DispatchResult{}})
	require.NoError(t, err)
	assert.Empty(t, out.Message)
}
