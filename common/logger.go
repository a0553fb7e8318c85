package common

import (
	"jobpower/utils/status"
)

// MT: Constant after initialization; thread-safe
var Log status.Logger = status.Default()
