// Package config loads application settings from an optional config file,
// a .env file and TASKBOARD_-prefixed environment variables, and validates
// them before any component is built.
package config
