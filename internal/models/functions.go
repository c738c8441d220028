package models

// FunctionName identifies a query operation the assistant can dispatch to.
type FunctionName string

const (
	FunctionListEmployees  FunctionName = "list-employees"
	FunctionListOrders     FunctionName = "list-orders"
	FunctionListSystemInfo FunctionName = "list-system-info"
)

func (f FunctionName) String() string {
	return string(f)
}

// DefaultSystemLabel is used when a tool call does not name its system.
const DefaultSystemLabel = "未知系統"
