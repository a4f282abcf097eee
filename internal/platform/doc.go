package platform

// Package platform contains OS integration glue: filesystem helpers, the
// default export directory and opening or revealing saved files.
