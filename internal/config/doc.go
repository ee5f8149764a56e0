// Package config loads and validates gridcast.json, the server's
// configuration file. Every field is optional; missing values fall back
// to the same defaults the server applies on its own.
package config
