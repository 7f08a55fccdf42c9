package utils

// REVISION is stamped into API responses so clients can report the build
// they talked to.
const REVISION = "v0.3.1"
