// Package config provides the configuration of a linkja hashing run.
// It defines the options for input and output locations, key material,
// concurrency, encryption and reporting, together with the YAML
// configuration file that can supply them.
package config
