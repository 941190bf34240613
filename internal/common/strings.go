package common

// UnknownStr is rendered for enum values outside their declared range.
const UnknownStr = "unknown"
