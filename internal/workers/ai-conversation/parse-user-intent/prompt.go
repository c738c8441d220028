package parseuserintent

import (
	"strings"

	"erp-assistant/internal/models"
)

const promptHeader = "你是一個ERP系統的智能助理，負責判斷用戶的需求屬於以下哪一種類型：\n" +
	"1. OPEN_APPLICATION：用戶想要開啟某個系統的頁面。\n" +
	"2. ASK_SYSTEM_QUESTION：用戶想要查詢系統中的資料。\n" +
	"3. UNKNOWN：無法判斷或與系統無關的需求。\n\n" +
	"以下是你目前可以使用的系統資訊列表:\n"

const promptContract = "\n\n請只以 JSON 格式回應，不要加入任何其他文字，欄位如下：\n" +
	"- 'request_type'：OPEN_APPLICATION、ASK_SYSTEM_QUESTION 或 UNKNOWN。\n" +
	"- 'llm_text_response'：給用戶的簡短回覆。\n" +
	"- 'frontend_route_name'：僅在 OPEN_APPLICATION 時提供，必須是上列的前端路由之一。\n" +
	"- 'tool_calls'：僅在 ASK_SYSTEM_QUESTION 時提供，是一個列表 (可以是一個或多個)。" +
	"每個物件包含 'system_name'、'function_name' 以及 'parameters'。" +
	"'parameters' 是篩選條件，鍵必須是該系統的可篩選欄位，值是要部分比對的文字；不需要篩選時給空物件 {}。\n" +
	"範例回應 (開啟頁面):\n" +
	`{"request_type": "OPEN_APPLICATION", "llm_text_response": "好的，正在為您開啟員工管理頁面。", "frontend_route_name": "employees"}` +
	"\n範例回應 (單一工具呼叫):\n" +
	`{"request_type": "ASK_SYSTEM_QUESTION", "llm_text_response": "好的，我會為您查詢住在台北市的陳姓員工。", "tool_calls": [{"system_name": "員工管理", "function_name": "list-employees", "parameters": {"address": "台北市", "name": "陳"}}]}` +
	"\n範例回應 (多個工具呼叫):\n" +
	`{"request_type": "ASK_SYSTEM_QUESTION", "llm_text_response": "好的，我會為您查詢員工和訂單資料。", "tool_calls": [{"system_name": "員工管理", "function_name": "list-employees", "parameters": {}}, {"system_name": "訂單管理", "function_name": "list-orders", "parameters": {}}]}` +
	"\n或者:\n" +
	`{"request_type": "UNKNOWN", "llm_text_response": "很抱歉，我無法處理您的請求，請提供更具體的資訊。"}`

// BuildPrompt renders the classification prompt. The same systems and
// question always produce the same text.
func BuildPrompt(systems []models.SystemInfo, question string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	if len(systems) == 0 {
		b.WriteString("(目前沒有任何系統)")
	}
	for i, info := range systems {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(describeSystem(info))
	}
	b.WriteString(promptContract)
	b.WriteString("\n\n用戶問題: ")
	b.WriteString(question)
	return b.String()
}

func describeSystem(info models.SystemInfo) string {
	columns := "無"
	if len(info.FilterableColumns) > 0 {
		columns = strings.Join(info.FilterableColumns, "、")
	}
	route := info.Route()
	if route == "" {
		route = "無"
	}
	return "- 系統名稱: " + info.SystemName +
		", 查詢函數: " + info.DataQueryFunctionName +
		", 可篩選欄位: " + columns +
		", 前端路由: " + route
}
