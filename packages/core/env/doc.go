// Package env resolves {{name}} placeholders in suite files.
//
// Plain names come from suite vars, {{$NAME}} reads the OS environment,
// and a .env file can seed the environment before a run. Unresolved
// placeholders are left in place and reported through the resolver's
// warn hook, so a typo shows up in the terminal instead of silently
// comparing against the raw placeholder.
package env
