package statement

// Defaults for extraction. Config overrides them; tests set them explicitly.
const (
	// DefaultBank identifies the one supported statement format.
	DefaultBank = "Wells Fargo"

	// DefaultCurrency is assumed for every account.
	DefaultCurrency = "USD"

	// DefaultAccountName is used when a section's account cannot be told
	// apart from its header or context.
	DefaultAccountName = "Checking"
)
