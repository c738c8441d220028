package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployee_ToRecord(t *testing.T) {
	e := Employee{ID: 1, EmployeeID: "E001", Name: "陳小明", Address: Ptr("台北市信義區"), Age: Ptr(int64(30))}
	r := e.ToRecord()

	assert.Equal(t, int64(1), r["id"])
	assert.Equal(t, "台北市信義區", r["address"])
	assert.Equal(t, int64(30), r["age"])
	assert.Nil(t, r["phone"])
	assert.Contains(t, r, "phone")
	assert.Len(t, r, len(EmployeeColumns))
	assert.Equal(t, SchemaEmployee, e.SchemaName())
}

func TestOrder_ToRecord(t *testing.T) {
	r := Order{ID: 2, OrderID: "O-1", OrderDate: "2024-01-05"}.ToRecord()
	assert.Nil(t, r["order_amount"])
	assert.Len(t, r, len(OrderColumns))
}

func TestSystemInfo_FilterableColumns(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want []string
	}{
		{"nil", nil, nil},
		{"blank", Ptr("  "), nil},
		{"json", Ptr(`["name", "address"]`), []string{"name", "address"}},
		{"comma list", Ptr("name, address"), []string{"name", "address"}},
		{"empty json", Ptr(`[]`), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFilterableColumns(tt.raw))
		})
	}

	assert.Nil(t, EncodeFilterableColumns(nil))
	assert.Equal(t, `["name","address"]`, *EncodeFilterableColumns([]string{"name", "address"}))

	info := SystemInfo{ID: 1, SystemName: "員工管理", DataQueryFunctionName: "list-employees", FilterableColumns: []string{"name"}}
	r := info.ToRecord()
	assert.Equal(t, `["name"]`, r["filterable_columns"])
	assert.Nil(t, r["frontend_route_name"])
	assert.Equal(t, "", info.Route())
}

func TestToolCall_Label(t *testing.T) {
	assert.Equal(t, "未知系統", ToolCall{}.Label())
	assert.Equal(t, "員工管理", ToolCall{SystemLabel: "員工管理"}.Label())
}

func TestIntentConstructors(t *testing.T) {
	ask := AskDataQuestion(nil, "好的")
	assert.Equal(t, RequestTypeAskSystemQuestion, ask.Type)
	assert.NotNil(t, ask.ToolCalls)
	assert.Empty(t, ask.ToolCalls)

	open := OpenApplication("employees", "正在開啟")
	assert.Equal(t, "employees", open.RouteName)

	unknown := UnknownIntent("抱歉")
	assert.Equal(t, RequestTypeUnknown, unknown.Type)
	assert.Equal(t, "抱歉", unknown.Text)
}

func TestCompactJSON_NoHTMLEscaping(t *testing.T) {
	raw, err := CompactJSON([]Record{{"name": "A&B <co>"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"A&B <co>"}]`, string(raw))
}

func TestSpacedJSON(t *testing.T) {
	raw, err := SpacedJSON([]Record{
		{"a": "x,y:z", "b": `q"r,`, "c": nil},
		{"a": "A&B", "b": []interface{}{1, 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"a": "x,y:z", "b": "q\"r,", "c": null}, {"a": "A&B", "b": [1, 2]}]`, string(raw))

	raw, err = SpacedJSON([]Record{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestResponse_MarshalJSON(t *testing.T) {
	decode := func(t *testing.T, r Response) map[string]interface{} {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}

	t.Run("open application", func(t *testing.T) {
		out := decode(t, Response{RequestType: RequestTypeOpenApplication, LLMTextResponse: "好的", FrontendRouteName: "employees"})
		assert.Equal(t, "employees", out["frontend_route_name"])
		assert.NotContains(t, out, "tool_result")
	})

	t.Run("refinement", func(t *testing.T) {
		out := decode(t, Response{RequestType: RequestTypeAskSystemQuestion, LLMTextResponse: "資料量過大"})
		assert.Contains(t, out, "tool_result")
		assert.Nil(t, out["tool_result"])
		assert.NotContains(t, out, "frontend_route_name")
	})

	t.Run("data and error entries", func(t *testing.T) {
		result := DispatchResult{Entries: []DispatchEntry{
			{SystemLabel: "員工管理", FunctionName: "list-employees", Records: nil},
			{SystemLabel: "未知系統", FunctionName: "get_foobar", Error: "LLM推薦的函數 'get_foobar' 不存在或未被映射。"},
		}}
		out := decode(t, Response{RequestType: RequestTypeAskSystemQuestion, ToolResult: result.ToolResults()})

		entries := out["tool_result"].([]interface{})
		require.Len(t, entries, 2)

		first := entries[0].(map[string]interface{})
		assert.Equal(t, []interface{}{}, first["data"])
		assert.NotContains(t, first, "error")

		second := entries[1].(map[string]interface{})
		assert.Contains(t, second["error"], "get_foobar")
		assert.NotContains(t, second, "data")
	})

	t.Run("unknown", func(t *testing.T) {
		out := decode(t, Response{RequestType: RequestTypeUnknown, LLMTextResponse: "抱歉"})
		assert.Len(t, out, 2)
	})
}

func TestResponse_RoundTrip(t *testing.T) {
	in := Response{
		RequestType:     RequestTypeAskSystemQuestion,
		LLMTextResponse: "共有 1 位員工",
		ToolResult: []ToolResultEntry{
			{SystemName: "員工管理", FunctionName: "list-employees", Data: []Record{{"name": "陳小明"}}},
		},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Response
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.RequestType, out.RequestType)
	require.Len(t, out.ToolResult, 1)
	assert.Equal(t, "陳小明", out.ToolResult[0].Data[0]["name"])
}
