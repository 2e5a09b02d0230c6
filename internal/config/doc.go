// Package config provides 12-factor configuration for the bridge host.
//
// Process settings come from environment variables with sensible defaults.
// The trust policy (navigation whitelist, trusted bridge origins, local
// scheme allowance) may additionally be loaded from a YAML file; it is fixed
// for the life of the process.
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - APP_VERSION, BRIDGE_MAX_MESSAGE_BYTES, BRIDGE_POLICY_FILE
package config
