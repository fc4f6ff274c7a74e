// File: utils/constants.go
package utils

import "time"

// ProviderSessionPrefix is the prefix used for redis provider session keys.
const ProviderSessionPrefix = "providerSession:"

// ProviderSessionTTL is the time-to-live for a stored provider session.
const ProviderSessionTTL = 30 * 24 * time.Hour
