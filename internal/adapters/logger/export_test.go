package logger

// FormatError exports the error renderer for white-box testing.
var FormatError = formatError
