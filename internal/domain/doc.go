// Package domain contains the core model for wcfprobe.
//
// The domain does not depend on net/http, the filesystem or any output format.
// Infra adapters map into and out of these types.
package domain
