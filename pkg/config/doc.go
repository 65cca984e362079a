// Package config defines the value object carrying every tunable of the
// local environment: resource names, addresses, file paths, the certificate
// policy inputs, and the required-tool list.
//
// All tunables are fixed constants established by Default and optionally
// overlaid from an oikos.yaml file at startup. Components receive the Config
// explicitly through their constructors; nothing reads it from globals. The
// deploy target is validated once at load time into an enumerated variant so
// downstream code never re-derives it from string inspection.
package config
