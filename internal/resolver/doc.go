// Package resolver contains the generic module resolution engine. It builds
// constraint-filtered candidate sets from a type catalog, hands them to a
// picker, and recursively resolves every free parameter of an open generic
// pick until a single closed type (or a cancellation) comes back.
package resolver
