package checkcontextbudget

// DefaultBudget is the per-entry character budget for records passed to the
// summarizer.
const DefaultBudget = 8000

type Config struct {
	Budget int
}

func LoadConfig() *Config {
	return &Config{
		Budget: DefaultBudget,
	}
}
