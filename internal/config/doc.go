// Package config defines the format-agnostic settings model of stladder and
// the Loader interface that fills it from a settings file.
//
// The Model is consumed by the app package: it builds the translator options,
// the device classification rules and the server settings from it. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
